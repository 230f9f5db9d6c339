// Package config loads the reactor configuration file.
//
// The configuration is stored in reactor.json or reactor.yaml. Every
// field is optional; missing values take the defaults below.
//
// # Configuration File Structure
//
//	maxUpdateCount: 100
//	log:
//	  level: info
//	  format: console
//	metrics:
//	  enabled: true
//	  namespace: reactor
//	  addr: localhost:9090
//	tracing:
//	  enabled: false
//	  tracerName: reactor
//	demo:
//	  items: 5
//
// # Usage
//
//	cfg, err := config.LoadFromDir(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Bound:", cfg.MaxUpdateCount)
package config
