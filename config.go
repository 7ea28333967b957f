package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sandflysecurity/sandfly-mediascan/pkg/entropy"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/scan"
	"github.com/sandflysecurity/sandfly-mediascan/pkg/signature"
)

type outputConfig struct {
	delimChar  string
	format     string
	outputFile string
	all        bool
}

type sshConfig struct {
	Host              string
	User              string
	Passwd            string
	AskPass           bool
	KeyFile           string
	KeyFilePassphrase string
	KnownHosts        string
	Port              int
	Agent             bool
	Sessions          int
	Timeout           time.Duration
}

// fileConfig is the YAML configuration file. Pointers tell unset values apart from zero values.
type fileConfig struct {
	Folder           string   `yaml:"folder"`
	EntropyThreshold *float64 `yaml:"entropy_threshold"`
	Threads          *int     `yaml:"threads"`
	MaxSize          *int64   `yaml:"max_size"`
	Signatures       []string `yaml:"signatures"`
}

type config struct {
	folder           string
	entropyThreshold float64
	threads          int
	maxSize          int64
	configFile       string

	sumMD5, sumSHA1, sumSHA256, sumSHA512 bool

	failOnDetect bool
	verbose      bool
	debug        bool
	logFormat    string

	outCfg outputConfig
	sshCfg sshConfig

	hashers    []HashType
	signatures *signature.Set
	results    *Results
}

var (
	// ErrConfigNotFound is returned when an explicitly requested configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrInvalidConfig wraps every configuration validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

var outputFormats = []string{formatText, formatJSON, formatCSV, formatMarkdown}

// bindPersistentFlags registers the flags shared by every command.
func (cfg *config) bindPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.configFile, "config", "", "YAML configuration file (default $XDG_CONFIG_HOME/"+constConfigRelPath+" if present)")
	flags.Float64VarP(&cfg.entropyThreshold, "entropy-threshold", "e", constDefaultThreshold,
		"flag media files with entropy greater than this value (0.0 - 8.0, 8.0 is the theoretical max and practically never exceeded)")
	flags.Int64Var(&cfg.maxSize, "max-size", 0, "skip files larger than this many bytes (0 means no limit)")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "log skipped files and other diagnostics")
	flags.BoolVar(&cfg.debug, "debug", false, "dump the effective configuration before scanning")
	flags.StringVar(&cfg.logFormat, "log-format", "text", "log format (text or json)")
}

// bindScanFlags registers the flags of the scan (root) command.
func (cfg *config) bindScanFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&cfg.folder, "folder", "f", "", "directory to scan")
	flags.IntVarP(&cfg.threads, "threads", "t", constDefaultThreads, "number of worker threads")
	flags.BoolVar(&cfg.failOnDetect, "fail-on-detect", false, "exit with status 3 when any file is flagged")

	flags.StringVar(&cfg.outCfg.format, "format", formatText, "result format: text, json, csv or markdown")
	flags.StringVar(&cfg.outCfg.outputFile, "output", "", "file to write json, csv or markdown results to (default stdout)")
	flags.StringVar(&cfg.outCfg.delimChar, "delim", constDelimeterDefault, "delimeter for CSV output")
	flags.BoolVar(&cfg.outCfg.all, "all", false, "include clean files in the results, not only flagged ones")

	flags.BoolVar(&cfg.sumMD5, "md5", true, "calculate and show MD5 checksum of flagged file(s)")
	flags.BoolVar(&cfg.sumSHA1, "sha1", true, "calculate and show SHA1 checksum of flagged file(s)")
	flags.BoolVar(&cfg.sumSHA256, "sha256", true, "calculate and show SHA256 checksum of flagged file(s)")
	flags.BoolVar(&cfg.sumSHA512, "sha512", true, "calculate and show SHA512 checksum of flagged file(s)")

	flags.StringVar(&cfg.sshCfg.Host, "ssh-host", "", "scan --folder on this SSH host instead of locally")
	flags.StringVar(&cfg.sshCfg.User, "ssh-user", "", "SSH user name")
	flags.StringVar(&cfg.sshCfg.Passwd, "ssh-pass", "", "SSH password")
	flags.BoolVar(&cfg.sshCfg.AskPass, "ssh-ask-pass", false, "prompt for the SSH password")
	flags.StringVar(&cfg.sshCfg.KeyFile, "ssh-key", "", "SSH private key file")
	flags.StringVar(&cfg.sshCfg.KeyFilePassphrase, "ssh-key-pass", "", "passphrase of the SSH private key")
	flags.StringVar(&cfg.sshCfg.KnownHosts, "ssh-known-hosts", "", "verify the host key against this known_hosts file")
	flags.DurationVar(&cfg.sshCfg.Timeout, "ssh-timeout", 30*time.Second, "SSH connection timeout")
	flags.IntVar(&cfg.sshCfg.Port, "ssh-port", 22, "SSH port")
	flags.IntVar(&cfg.sshCfg.Sessions, "ssh-sessions", 8, "maximum concurrent SSH sessions")
	flags.BoolVar(&cfg.sshCfg.Agent, "ssh-agent", false, "use SSH agent")
}

// findConfigFile returns the configuration file to load, or "" when there is none.
func (cfg *config) findConfigFile() (string, error) {
	if cfg.configFile != "" {
		if _, err := os.Stat(cfg.configFile); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, cfg.configFile)
		}
		return cfg.configFile, nil
	}
	if path, err := xdg.SearchConfigFile(constConfigRelPath); err == nil {
		return path, nil
	}
	return "", nil
}

// loadConfigFile reads a YAML configuration file.
func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}

	var fc fileConfig
	if err = yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &fc, nil
}

// load merges the configuration file into cfg, where the matching flag was not set explicitly,
// then validates the result.
func (cfg *config) load(cmd *cobra.Command) error {
	path, err := cfg.findConfigFile()
	if err != nil {
		return err
	}

	var fc *fileConfig
	if path != "" {
		if fc, err = loadConfigFile(path); err != nil {
			return err
		}
	} else {
		fc = new(fileConfig)
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if fc.Folder != "" && !changed("folder") {
		cfg.folder = fc.Folder
	}
	if fc.EntropyThreshold != nil && !changed("entropy-threshold") {
		cfg.entropyThreshold = *fc.EntropyThreshold
	}
	if fc.Threads != nil && !changed("threads") {
		cfg.threads = *fc.Threads
	}
	if fc.MaxSize != nil && !changed("max-size") {
		cfg.maxSize = *fc.MaxSize
	}

	switch {
	case len(fc.Signatures) > 0:
		if cfg.signatures, err = signature.ParseSet(fc.Signatures); err != nil {
			return fmt.Errorf("%w: signatures: %w", ErrInvalidConfig, err)
		}
	default:
		cfg.signatures = signature.Default()
	}

	cfg.hashers = cfg.hashers[:0]
	for _, h := range []struct {
		on bool
		ht HashType
	}{
		{cfg.sumMD5, HashTypeMD5},
		{cfg.sumSHA1, HashTypeSHA1},
		{cfg.sumSHA256, HashTypeSHA256},
		{cfg.sumSHA512, HashTypeSHA512},
	} {
		if h.on {
			cfg.hashers = append(cfg.hashers, h.ht)
		}
	}

	return cfg.validateCommon()
}

func (cfg *config) validateCommon() error {
	var errs []error
	if !(cfg.entropyThreshold > 0 && cfg.entropyThreshold <= entropy.Max) {
		errs = append(errs, fmt.Errorf("entropy threshold must be greater than 0.0 and at most 8.0 (got %.2f)", cfg.entropyThreshold))
	}
	if cfg.maxSize < 0 {
		errs = append(errs, errors.New("max size can not be negative"))
	}
	if cfg.logFormat != "text" && cfg.logFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", cfg.logFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// validateScan checks the options only the scan command uses.
func (cfg *config) validateScan() error {
	var errs []error

	if cfg.folder == "" {
		errs = append(errs, errors.New("a folder to scan is required (--folder)"))
	}
	if cfg.threads < 1 {
		errs = append(errs, fmt.Errorf("threads must be at least 1 (got %d)", cfg.threads))
	}
	if !slices.Contains(outputFormats, cfg.outCfg.format) {
		errs = append(errs, fmt.Errorf("unknown output format %q", cfg.outCfg.format))
	}
	if cfg.outCfg.outputFile != "" && cfg.outCfg.format == formatText {
		errs = append(errs, errors.New("--output requires --format json, csv or markdown"))
	}
	if cfg.outCfg.delimChar == "" {
		errs = append(errs, errors.New("CSV delimiter can not be empty"))
	}

	ssh := cfg.sshCfg
	switch {
	case ssh.Host != "" && ssh.User == "":
		errs = append(errs, errors.New("ssh-host requires ssh-user"))
	case ssh.User != "" && ssh.Host == "":
		errs = append(errs, errors.New("ssh-user requires ssh-host"))
	case ssh.Host != "" && !ssh.Agent && ssh.KeyFile == "" && ssh.Passwd == "" && !ssh.AskPass:
		errs = append(errs, errors.New("ssh mode requires ssh-key, ssh-pass, ssh-ask-pass or ssh-agent"))
	}

	if ssh.Host == "" && cfg.folder != "" {
		if info, err := os.Stat(cfg.folder); err != nil {
			errs = append(errs, fmt.Errorf("folder: %w", err))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Errorf("folder %s is not a directory", cfg.folder))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// scanConfig is the immutable configuration handed to the scanner.
func (cfg *config) scanConfig() scan.Config {
	return scan.Config{
		Root:             cfg.folder,
		EntropyThreshold: cfg.entropyThreshold,
		Workers:          cfg.threads,
	}
}
