package config

// Supported gorm engines.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine string `toml:"gormEngine"` // mysql, postgres or sqlite
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	User       string `toml:"user"`
	Password   string `toml:"password"`
	Name       string `toml:"name"` // database name, or file path for sqlite
	Extras     string `toml:"extras"`
	Debug      bool   `toml:"debug"` // log every SQL statement
}
