package cmd

import "time"

// Config holds the settings read from the environment at startup.
type Config struct {
	HTTPPort         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSslMode        string
	OtpTTL           time.Duration
	OptimizeCron     string
	MetricsNamespace string
}

// DSN builds the PostgreSQL connection string for gorm.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSslMode
}
