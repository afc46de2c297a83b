// Package main generates a self-signed server certificate and key for
// running the planner over HTTPS in development. Point TLS_CERT and TLS_KEY
// at the written files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/planner/internal/certgen"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fset := flag.NewFlagSet("certgen", flag.ContinueOnError)
	dir := fset.String("dir", "certs", "output directory")
	hosts := fset.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs")
	days := fset.Int("days", 365, "validity in days")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if *days <= 0 {
		return fmt.Errorf("days must be positive, got %d", *days)
	}

	certPEM, keyPEM, err := certgen.GenerateSelfSigned(splitHosts(*hosts), time.Duration(*days)*24*time.Hour)
	if err != nil {
		return err
	}
	certPath, keyPath, err := certgen.WriteKeyPair(*dir, certPEM, keyPEM)
	if err != nil {
		return err
	}

	fmt.Printf("TLS_CERT=%s\nTLS_KEY=%s\n", certPath, keyPath)
	return nil
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
