package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"imagededup/config"
	"imagededup/database"
	"imagededup/logging"
)

type globalFlags struct {
	config   string
	store    string
	database string
	debug    bool
	logFile  string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

// ensureConfig loads the configuration once, applies flag overrides and
// sets up logging
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, resolved, exists, err := config.Load(c.flags.config)
		if err != nil {
			c.configErr = err
			return
		}
		c.applyFlags(cfg)
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}

		err = logging.SetupLogger(logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			LogFile: cfg.Paths.LogFile,
			Console: cmd.ErrOrStderr(),
		})
		if err != nil {
			c.configErr = fmt.Errorf("setup logging: %w", err)
			return
		}
		if exists {
			logging.DebugLog("Loaded configuration from %s", resolved)
		}

		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) applyFlags(cfg *config.Config) {
	if v := strings.TrimSpace(c.flags.store); v != "" {
		cfg.Paths.StorePath = v
	}
	if v := strings.TrimSpace(c.flags.database); v != "" {
		cfg.Paths.DatabasePath = v
	}
	if v := strings.TrimSpace(c.flags.logFile); v != "" {
		cfg.Paths.LogFile = v
	}
	if c.flags.debug {
		cfg.Logging.Level = "debug"
	}
}

// openMirror initializes the configured SQLite mirror. It returns nil when
// no database is configured.
func (c *commandContext) openMirror() (*sql.DB, error) {
	if c.config == nil || c.config.Paths.DatabasePath == "" {
		return nil, nil
	}
	db, err := database.InitDatabase(c.config.Paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", c.config.Paths.DatabasePath, err)
	}
	return db, nil
}

// openExistingMirror opens the configured database without creating it
func (c *commandContext) openExistingMirror() (*sql.DB, error) {
	if c.config == nil || c.config.Paths.DatabasePath == "" {
		return nil, errors.New("no database configured; pass --db or set paths.database_path")
	}
	path := c.config.Paths.DatabasePath
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	db, err := database.OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}
