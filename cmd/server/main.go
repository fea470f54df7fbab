package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mnohosten/taskpool/pkg/metrics"
	"github.com/mnohosten/taskpool/pkg/pool"
	"github.com/mnohosten/taskpool/pkg/server"
)

func main() {
	// Parse command-line flags
	host := flag.String("host", "localhost", "Server host address")
	port := flag.Int("port", 8080, "Server port")
	workers := flag.Int("workers", 0, "Number of pool workers (0 = default)")
	corsOrigin := flag.String("cors-origin", "*", "CORS allowed origin")
	enableTLS := flag.Bool("tls", false, "Enable TLS/SSL")
	tlsCert := flag.String("tls-cert", "", "Path to TLS certificate file")
	tlsKey := flag.String("tls-key", "", "Path to TLS private key file")
	genCert := flag.Bool("gen-cert", false, "Generate a self-signed certificate at -tls-cert/-tls-key and exit")
	enableGraphQL := flag.Bool("graphql", false, "Enable GraphQL API endpoint (/graphql) and GraphiQL playground (/graphiql)")
	enableAuth := flag.Bool("auth", false, "Require authentication for admin endpoints")
	adminUser := flag.String("admin-user", "", "Admin username (required with -auth)")
	adminPassword := flag.String("admin-password", "", "Admin password (required with -auth)")
	slowLogFile := flag.String("slow-log", "", "Path to slow task log file (JSON lines)")
	demoLoad := flag.Bool("demo-load", false, "Submit a continuous stream of synthetic tasks")
	flag.Parse()

	if *genCert {
		if *tlsCert == "" || *tlsKey == "" {
			fmt.Fprintln(os.Stderr, "❌ -gen-cert requires -tls-cert and -tls-key")
			os.Exit(1)
		}
		if err := server.GenerateSelfSignedCert(*tlsCert, *tlsKey, *host); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to generate certificate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Self-signed certificate written to %s and %s\n", *tlsCert, *tlsKey)
		return
	}

	// Create the worker pool
	poolConfig := pool.DefaultConfig()
	if *workers > 0 {
		poolConfig.NumWorkers = *workers
	}
	p := pool.New(poolConfig)

	// Create server configuration
	config := server.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.AllowedOrigins = []string{*corsOrigin}
	config.EnableTLS = *enableTLS
	config.TLSCertFile = *tlsCert
	config.TLSKeyFile = *tlsKey
	config.EnableGraphQL = *enableGraphQL
	config.EnableAuth = *enableAuth
	config.AdminUser = *adminUser
	config.AdminPassword = *adminPassword
	config.SlowTaskLogFile = *slowLogFile

	// Create server
	srv, err := server.New(config, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create server: %v\n", err)
		os.Exit(1)
	}

	if *demoLoad {
		go runDemoLoad(p, srv.Collector(), srv.SlowLog())
	}

	// Start server (blocks until shutdown)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Server error: %v\n", err)
		os.Exit(1)
	}
}

// runDemoLoad keeps the pool busy with short synthetic tasks so the stats,
// metrics, and slow-task endpoints have something to show.
func runDemoLoad(p *pool.Pool, collector *metrics.MetricsCollector, slowLog *metrics.SlowTaskLog) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; ; i++ {
		name := fmt.Sprintf("demo-task-%d", i)
		sleep := time.Duration(rng.Intn(20)) * time.Millisecond
		if rng.Intn(50) == 0 {
			// Occasional slow task to exercise the slow-task log
			sleep = 150 * time.Millisecond
		}

		collector.RecordSubmit()
		err := p.SubmitFunc(metrics.WrapTask(collector, slowLog, name, func() error {
			time.Sleep(sleep)
			return nil
		}))
		if err != nil {
			// Pool shut down
			return
		}

		time.Sleep(10 * time.Millisecond)
	}
}
