// Package config provides configuration parsing for vrt.
//
// The configuration is stored in vrt.json, found by walking up from the
// working directory. Every field is optional.
//
// # Configuration File Structure
//
//	{
//	  "debug": false,
//	  "log": {"level": "info", "format": "text"},
//	  "scheduler": {"recursion_limit": 100},
//	  "metrics": {"enabled": true, "namespace": "vrt", "path": "/metrics"},
//	  "tracing": {"enabled": false, "tracer_name": "vrt"},
//	  "preview": {"host": "localhost", "port": 3000},
//	  "snapshot": {"dir": "snapshots", "bucket": "", "prefix": "", "region": ""}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Preview:", cfg.PreviewURL())
package config
