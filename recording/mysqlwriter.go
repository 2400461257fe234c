package recording

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	// Need to use MySQL connections.
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// MySQLScopeWriter is a ScopeWriter that stores scope records in a MySQL
// database.
type MySQLScopeWriter struct {
	dbConnection
	recordsToWriteToDB []ScopeRecord
	batchSize          int
}

// NewMySQLScopeWriter returns a new MySQLScopeWriter.
// The Init function must be called before using the writer.
func NewMySQLScopeWriter() *MySQLScopeWriter {
	w := &MySQLScopeWriter{
		batchSize: 100000,
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// Init establishes a connection to MySQL and creates a database.
func (w *MySQLScopeWriter) Init() {
	w.dbConnection.init("")
	w.createDatabase()
}

func (w *MySQLScopeWriter) createDatabase() {
	dbName := "chrono_scopes_" + xid.New().String()
	w.dbName = dbName
	log.Printf("Scopes are collected in database: %s\n", dbName)

	w.mustExecute("CREATE DATABASE " + dbName)
	w.mustExecute("USE " + dbName)

	w.createTable()
}

func (w *MySQLScopeWriter) createTable() {
	w.mustExecute(`
		create table scope
		(
			chain_id    varchar(200)    not null,
			name        varchar(200)    null,
			id          bigint unsigned null,
			depth       int unsigned    null,
			start_us    bigint unsigned null,
			end_us      bigint unsigned null,
			duration_us bigint unsigned null
		);
	`)

	w.mustExecute(`
        ALTER TABLE scope ENGINE=InnoDB;
	`)

	w.mustExecute(`
		create index scope_chain_id_index
			on scope (chain_id);
	`)

	w.mustExecute(`
		create index scope_name_index
			on scope (name);
	`)

	w.mustExecute(`
		create index scope_start_us_index
			on scope (start_us) USING BTREE;
	`)
}

// Write buffers the record to be written into the database.
func (w *MySQLScopeWriter) Write(record ScopeRecord) {
	w.recordsToWriteToDB = append(w.recordsToWriteToDB, record)
	if len(w.recordsToWriteToDB) > w.batchSize {
		w.Flush()
	}
}

// Flush writes all the records in the buffer into the database.
func (w *MySQLScopeWriter) Flush() {
	if len(w.recordsToWriteToDB) == 0 {
		return
	}

	sqlStr := `INSERT INTO scope VALUES`
	vals := []any{}

	for i := range w.recordsToWriteToDB {
		sqlStr += "(?, ?, ?, ?, ?, ?, ?),"
		vals = append(vals,
			w.recordsToWriteToDB[i].ChainID,
			w.recordsToWriteToDB[i].Name,
			w.recordsToWriteToDB[i].ID,
			w.recordsToWriteToDB[i].Depth,
			w.recordsToWriteToDB[i].StartUs,
			w.recordsToWriteToDB[i].EndUs,
			w.recordsToWriteToDB[i].DurationUs,
		)
	}

	sqlStr = strings.TrimSuffix(sqlStr, ",")

	stmt, err := w.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	_, err = stmt.Exec(vals...)
	if err != nil {
		panic(err)
	}

	err = stmt.Close()
	if err != nil {
		panic(err)
	}

	w.recordsToWriteToDB = nil
}

type dbConnection struct {
	*sql.DB

	username  string
	password  string
	ipAddress string
	port      int
	dbName    string
}

func (c *dbConnection) init(dbName string) {
	c.dbName = dbName

	c.getCredentials()
	c.connect()
}

func (c *dbConnection) getCredentials() {
	// A .env file in the working directory can provide the variables.
	_ = godotenv.Load()

	c.username = os.Getenv("CHRONO_DB_USERNAME")
	if c.username == "" {
		panic(`database username is not set, use environment variable ` +
			`CHRONO_DB_USERNAME to set it.`)
	}

	c.password = os.Getenv("CHRONO_DB_PASSWORD")
	c.ipAddress = os.Getenv("CHRONO_DB_IP")
	if c.ipAddress == "" {
		c.ipAddress = "127.0.0.1"
	}

	portString := os.Getenv("CHRONO_DB_PORT")
	if portString == "" {
		portString = "3306"
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		panic(err)
	}
	c.port = port
}

func (c *dbConnection) connect() {
	connectStr := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		c.username, c.password, c.ipAddress, c.port, c.dbName)
	db, err := sql.Open("mysql", connectStr)
	if err != nil {
		panic(err)
	}

	c.DB = db
}

func (c *dbConnection) mustExecute(query string) sql.Result {
	res, err := c.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
