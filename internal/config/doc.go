// Package config loads msgform settings with Viper.
//
// Values come from, in increasing precedence: `default` struct tags, a
// msgform.yaml file in the config directory, a .env file in the same
// directory and MSGFORM_* environment variables (MSGFORM_VIEW_TOPIC ->
// view.topic).
//
// # Configuration Structure
//
//   - Log: logger level and format
//   - View: topic, initial expansion, whole-tree read-only, hidden and
//     read-only property paths, snapshot output format
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	log, _ := logger.New(&cfg.Log)
package config
