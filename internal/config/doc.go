// Package config loads statetrack settings.
//
// Settings come from statetrack.json in the working directory (or the file
// passed with --config), overridden by STATETRACK_* environment variables,
// on top of built-in defaults. Nested keys map to environment variables by
// replacing dots with underscores: tracker.max_cascade is
// STATETRACK_TRACKER_MAX_CASCADE.
//
// # Configuration File Structure
//
//	{
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "tracker": {
//	    "max_cascade": 100,
//	    "cascade_mode": "throttle"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "statetrack"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracer_name": "statetrack"
//	  },
//	  "inspect": {
//	    "addr": "localhost:7070"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	tr := reactive.New(cfg.TrackerOptions(cfg.Logger(os.Stderr))...)
package config
