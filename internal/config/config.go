package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings splits list-valued settings
	"time"    // time is used for duration settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints and durations
// for limits and budgets.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	JWTSecret      string        // secret used to verify JWTs
	AMQPURL        string        // RabbitMQ connection URL (empty -> broker disabled, in-process fallback)
	TxBudget       time.Duration // wall-clock budget for the atomic edition transaction
	BlockedDomains []string      // static blocklisted email domains, comma separated
	InternalRole   string        // role claim that designates internal operator accounts
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Optional settings
// fall back to conservative defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),           // environment (dev/test/prod)
		Port:           must("APP_PORT"),          // port to bind the HTTP server
		DBUser:         must("DB_USER"),           // database user
		DBPass:         os.Getenv("DB_PASS"),      // database password (empty allowed)
		DBHost:         must("DB_HOST"),           // database host
		DBPort:         must("DB_PORT"),           // database port
		DBName:         must("DB_NAME"),           // database name
		JWTSecret:      must("JWT_SECRET"),        // secret used for verifying JWTs
		AMQPURL:        os.Getenv("RABBITMQ_URL"), // broker URL (empty allowed)
		TxBudget:       envDur("EDITION_TX_BUDGET", 5*time.Second),
		BlockedDomains: splitCSV(os.Getenv("BLOCKED_EMAIL_DOMAINS")),
		InternalRole:   envStr("INTERNAL_ROLE", "ADMIN"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// splitCSV splits a comma separated list, trimming whitespace and dropping
// empty entries.  An empty input yields a nil slice.
func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
