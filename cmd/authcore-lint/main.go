package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	authcore "github.com/holasoymalva/authcore"
	"github.com/holasoymalva/authcore/permission"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the YAML config to validate")
		quiet      = flag.Bool("quiet", false, "suppress the summary on success")
	)
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: authcore-lint -config <path> [-quiet]")
		os.Exit(2)
	}

	cfg, err := authcore.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *configPath, err)
		os.Exit(1)
	}

	if *quiet {
		return
	}

	// Validate already compiled the role table, so this cannot fail; it is
	// recompiled only to report wildcard grants.
	table, err := permission.NewTable(cfg.Roles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *configPath, err)
		os.Exit(1)
	}

	fmt.Printf("%s: ok\n", *configPath)
	fmt.Printf("  issuer:     %s\n", orNone(cfg.Token.Issuer))
	fmt.Printf("  token ttl:  %s (leeway %s)\n", cfg.Token.DefaultTTL, cfg.Token.Leeway)
	fmt.Printf("  providers:  %s\n", strings.Join(cfg.Providers.Enabled, ", "))
	if cfg.Providers.DefaultFederatedRole != "" {
		fmt.Printf("  federated:  provisioned as %q\n", cfg.Providers.DefaultFederatedRole)
	}
	fmt.Printf("  roles:      %d", table.Len())
	if wild := table.WildcardRoles(); len(wild) > 0 {
		fmt.Printf(" (wildcard: %s)", strings.Join(wild, ", "))
	}
	fmt.Println()
	fmt.Printf("  sessions:   retained %s\n", retentionLabel(cfg))
	fmt.Printf("  audit:      %s\n", onOff(cfg.Audit.Enabled))
	fmt.Printf("  metrics:    %s\n", onOff(cfg.Metrics.Enabled))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

func retentionLabel(cfg authcore.Config) string {
	if cfg.Session.Retention == 0 {
		return "forever"
	}
	return cfg.Session.Retention.String()
}
