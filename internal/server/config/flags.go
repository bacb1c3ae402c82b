package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string     gRPC bind address (e.g. ":50051")
//	-o string     ops HTTP bind address (metrics, health)
//	-d string     PostgreSQL DSN
//	-s string     secret key for ceremony handles
//	-l string     log level
//	-t duration   session lifetime (e.g. "168h")
//	-w duration   passkey challenge lifetime
//	-r string     WebAuthn relying party id
//	-n string     WebAuthn relying party display name
//	-O string     comma-separated WebAuthn origins
//	-u, -p, -b, -g, -e   S3 user, password, bucket, region, endpoint
//	-x string     OTLP/HTTP trace endpoint
//
// os.Args is filtered through flagx.FilterArgs first so -c/-config and
// foreign flags never reach this FlagSet.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-o", "-d", "-s", "-l", "-t", "-w", "-r", "-n", "-O",
		"-u", "-p", "-b", "-g", "-e", "-x",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.OpsAddrHTTP, "o", config.OpsAddrHTTP, "address and port for metrics and health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.DurationVar(&config.PasskeyChallengeTTL, "w", config.PasskeyChallengeTTL, "passkey challenge lifetime")
	fs.StringVar(&config.RPID, "r", config.RPID, "WebAuthn relying party id")
	fs.StringVar(&config.RPDisplayName, "n", config.RPDisplayName, "WebAuthn relying party display name")
	origins := fs.String("O", strings.Join(config.RPOrigins, ","), "comma-separated WebAuthn origins")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.OTELEndpoint, "x", config.OTELEndpoint, "OTLP/HTTP trace endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RPOrigins = splitList(*origins)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
