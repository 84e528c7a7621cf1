package config

import (
	"flag"
)

// Get parses command line args, loads the configuration and validates it.
// Flags override values from the YAML file.
func Get(args []string) (Config, error) {
	fs := flag.NewFlagSet("nova", flag.ContinueOnError)
	path := fs.String("config", "", "path to yaml config")
	envFile := fs.String("env", ".env", "path to .env file with API keys")
	mode := fs.String("mode", "", "run mode: repl or web")
	user := fs.String("user", "", "username for the repl session")
	addr := fs.String("addr", "", "listen address for web mode, example: :8080")
	debug := fs.Bool("debug", false, "enable development logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := Load(*path, *envFile)
	if err != nil {
		return Config{}, err
	}

	setString(&cfg.Mode, *mode)
	setString(&cfg.Username, *user)
	setString(&cfg.Web.Addr, *addr)
	cfg.Debug = *debug

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
