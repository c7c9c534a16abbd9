package env

const (
	// Prefix is the environment variable prefix for all fxbench flags
	Prefix = "FXBENCH"

	// DBURLSuffix is the suffix of the Postgres connection string variable
	DBURLSuffix = "_DB_URL"
)
