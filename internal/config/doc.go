// Package config loads the YAML configuration of the jwksfind command.
//
// Files are decoded over DefaultConfig, so a file only needs the members
// it changes. ${VAR} and ${VAR:-default} references are expanded from the
// environment before decoding:
//
//	resolver:
//	  use: signature
//	  secure: ${JWKSFIND_SECURE:-true}
//	  keyTypes: [RSA, EC]
//	http:
//	  timeout: 10s
//	  retry:
//	    maxRetries: 2
//
// Load and Parse validate the result and report every problem at once as
// ValidationErrors.
package config
