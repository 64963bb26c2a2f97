package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	go_ora "github.com/sijms/go-ora/v2"
	log "github.com/sirupsen/logrus"

	"ratehub/internal/schema"
)

// OracleRepository serves the port fee reference table from the corporate
// Oracle instance. When configured, its rows override the embedded defaults
// at startup.
type OracleRepository interface {
	PortFeeProfiles(ctx context.Context) ([]schema.PortFeeProfile, error)
}

// Settings represents application configuration
type OracleSettings struct {
	DBUser      *string
	DBPassword  *string
	Host        *string
	Port        *int
	ServiceName *string
}

const portFeeQuery = `SELECT PORT_CODE, PORT_NAME, COUNTRY, PORT_CHARGES, TERMINAL_HANDLING,
	DOCUMENTATION_FEE, FREE_STORAGE_DAYS, DEMURRAGE_RATE, CONGESTION_LEVEL, NOTES
	FROM PORT_FEE_PROFILE`

// OracleDBConnectionPool implements the OracleRepository interface
type OracleDBConnectionPool struct {
	db         *sql.DB
	stmt       *sql.Stmt
	maxRetries int
}

// NewOracleDBConnectionPool creates a new instance of OracleDBConnectionPool
func NewOracleDBConnectionPool(settings OracleSettings, concurrency, maxRetries int) (*OracleDBConnectionPool, error) {
	//instead of fetching rows one by one, we fetch multiple rows in one network operation
	urlOptions := map[string]string{
		"PREFETCH_ROWS": "500",
	}
	connStr := go_ora.BuildUrl(*settings.Host, *settings.Port, *settings.ServiceName, *settings.DBUser, *settings.DBPassword, urlOptions)
	var db *sql.DB
	var err error

	// Retry mechanism for opening the database connection
	for retry := 0; retry <= maxRetries; retry++ {
		db, err = sql.Open("oracle", connStr)
		if err == nil {
			break
		}
		log.Errorf("attempt %d: error opening database connection: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+1))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection after %d retries: %w", maxRetries, err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(concurrency)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(10 * time.Minute)
	db.SetConnMaxLifetime(20 * time.Minute)

	pool := &OracleDBConnectionPool{
		db:         db,
		maxRetries: maxRetries,
	}
	//stmt will be bound to a single underlying connection forever. https://pkg.go.dev/database/sql#Stmt
	stmt, err := db.PrepareContext(context.Background(), portFeeQuery)
	if err != nil {
		db.Close()
		return nil, err
	}
	pool.stmt = stmt

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for retry := 0; retry <= maxRetries; retry++ {
		err = pool.db.PingContext(ctx)
		if err == nil {
			log.Info("Connected To Oracle DB connection pool")
			break
		}
		log.Errorf("attempt %d: failed to connect to Oracle DB: %v", retry+1, err)
		if retry < maxRetries {
			time.Sleep(time.Second * time.Duration(retry+2))
		}
	}
	if err != nil {
		pool.db.Close()
		return nil, fmt.Errorf("failed to connect to Oracle DB after %d retries: %w", maxRetries, err)
	}
	return pool, nil
}

func (p *OracleDBConnectionPool) PortFeeProfiles(ctx context.Context) ([]schema.PortFeeProfile, error) {
	rows, err := p.stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("port fee query failed: %w", err)
	}
	defer rows.Close()

	var profiles []schema.PortFeeProfile
	for rows.Next() {
		var profile schema.PortFeeProfile
		var congestion string
		var notes sql.NullString
		err := rows.Scan(&profile.Code, &profile.Name, &profile.Country,
			&profile.PortCharges, &profile.TerminalHandling, &profile.Documentation,
			&profile.FreeDays, &profile.DemurrageRate, &congestion, &notes)
		if err != nil {
			return nil, fmt.Errorf("port fee row scan failed: %w", err)
		}
		profile.CongestionLevel = schema.CongestionLevel(congestion)
		profile.Notes = notes.String
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Infof("Loaded %d port fee profiles from Oracle", len(profiles))
	return profiles, nil
}

func (p *OracleDBConnectionPool) Close() error {
	if p.stmt != nil {
		_ = p.stmt.Close()
	}
	return p.db.Close()
}
