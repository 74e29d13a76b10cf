// Command validate provides a small CLI that validates bridge configuration
// YAML files. It checks:
//   - YAML structure and value ranges (retries, timeout, workers, buffer limit)
//   - Backend host URL shape (http or https scheme, non-empty host)
//   - Journal path parent directory existence and writability
//   - Listen address shape for the server mode
package main

import (
	"flag"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxelforge/gdmc-bridge/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Notes = append(r.Notes, "✓ "+fmt.Sprintf(format, args...))
}

// validateFile loads and validates a single configuration YAML file.
func validateFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
		Notes: []string{},
	}

	cfg, err := config.Load(path)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	validateHost(cfg.Host, &result)
	validateJournalPath(cfg.JournalPath, &result)
	validateListenAddr(cfg.HTTPAddr, &result)

	if result.Valid {
		result.info("Backend: %s", cfg.Host)
		result.info("Retries: %d, timeout: %s", cfg.Retries, cfg.Timeout())
		result.info("Workers: %d", cfg.Workers)
		if cfg.Buffering {
			result.info("Buffering: on (flush at %d writes)", cfg.BufferLimit)
		} else {
			result.info("Buffering: per-scope only")
		}
		if cfg.JournalPath != "" {
			result.info("Journal: %s", cfg.JournalPath)
		} else {
			result.info("Journal: disabled")
		}
		result.info("Listen address: %s", cfg.HTTPAddr)
	}

	return result
}

// validateHost checks that the backend host is an absolute http(s) URL.
func validateHost(host string, result *ValidationResult) {
	u, err := url.Parse(host)
	if err != nil {
		result.fail("host is not a valid URL: %v", err)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		result.fail("host must use http or https, got %q", host)
	}
	if u.Host == "" {
		result.fail("host has no hostname, got %q", host)
	}
}

// validateJournalPath checks that the journal file could be created where
// configured. An empty path disables the journal and is always fine.
func validateJournalPath(path string, result *ValidationResult) {
	if path == "" {
		return
	}
	dir := filepath.Dir(path)
	stat, err := os.Stat(dir)
	if err != nil {
		result.fail("journal directory %s does not exist", dir)
		return
	}
	if !stat.IsDir() {
		result.fail("journal parent %s is not a directory", dir)
	}
}

// validateListenAddr checks the server-mode listen address splits into a
// host and port.
func validateListenAddr(addr string, result *ValidationResult) {
	if addr == "" {
		result.fail("http_addr must not be empty")
		return
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		result.fail("http_addr %q is not a valid listen address: %v", addr, err)
	}
}

// main validates the config files given as arguments, or every *.yaml file
// in -dir, printing a concise report and exiting non-zero if any are invalid.
func main() {
	dir := flag.String("dir", "", "Directory to scan for *.yaml config files")
	flag.Parse()

	files := flag.Args()
	if *dir != "" {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.yaml"))
		if err != nil {
			fmt.Printf("Error finding config files: %v\n", err)
			os.Exit(1)
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		fmt.Println("Usage: validate [-dir DIR] [FILE ...]")
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				if !strings.HasPrefix(note, "✓") {
					fmt.Println("  ❌ " + note)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
