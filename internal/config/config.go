package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"p2composite/internal/domain"
)

// ErrHelp is returned when -help is given.
var ErrHelp = errors.New("help requested")

type Config struct {
	Destinations []domain.Descriptor
	Add          []domain.Descriptor
	Remove       []domain.Descriptor
	Comparator   string
	FailOnExists bool
	List         bool
	Verbose      bool
	// Ignored holds options that were not recognised.
	Ignored []string
}

// Parse reads single-dash, case-insensitive options. An option consumes the
// following argument unless it is the last one or the next one starts
// with "-".
func Parse(args []string) (Config, error) {
	var cfg Config
	if len(args) == 0 {
		return Config{}, errors.New("no argument provided")
	}

	compressed := false
	name := ""
	for i := 0; i < len(args); i++ {
		option := args[i]
		arg := ""
		if i < len(args)-1 && !strings.HasPrefix(args[i+1], "-") {
			i++
			arg = args[i]
		}

		switch strings.ToLower(option) {
		case "-location":
			if arg == "" {
				return Config{}, errors.New("-location requires a repository URI")
			}
			location, err := parseLocation(arg)
			if err != nil {
				return Config{}, err
			}
			cfg.Destinations = append(cfg.Destinations, domain.Descriptor{Location: location})
		case "-add":
			children, err := parseChildren(arg)
			if err != nil {
				return Config{}, err
			}
			cfg.Add = append(cfg.Add, children...)
		case "-remove":
			children, err := parseChildren(arg)
			if err != nil {
				return Config{}, err
			}
			cfg.Remove = append(cfg.Remove, children...)
		case "-validate":
			if arg != domain.JarComparatorID && arg != domain.MD5ComparatorID {
				return Config{}, fmt.Errorf("unknown comparator %q", arg)
			}
			cfg.Comparator = arg
		case "-failonexists":
			cfg.FailOnExists = true
		case "-compressed":
			compressed = true
		case "-repositoryname":
			if arg == "" {
				return Config{}, errors.New("-repositoryName requires a name")
			}
			name = arg
		case "-list":
			cfg.List = true
		case "-verbose":
			cfg.Verbose = true
		case "-help", "--help", "-h":
			return Config{}, ErrHelp
		default:
			cfg.Ignored = append(cfg.Ignored, option)
		}
	}

	if !cfg.Verbose {
		cfg.Verbose = envTruthy("P2COMPOSITE_VERBOSE")
	}

	if len(cfg.Destinations) == 0 {
		return Config{}, errors.New("-location is required")
	}

	last := &cfg.Destinations[len(cfg.Destinations)-1]
	last.Compressed = compressed
	if name != "" {
		last.Name = name
	}

	return cfg, nil
}

// parseChildren splits a comma separated list, trimming entries and
// skipping empty ones.
func parseChildren(arg string) ([]domain.Descriptor, error) {
	var children []domain.Descriptor
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		location, err := parseURI(part)
		if err != nil {
			return nil, err
		}
		children = append(children, domain.Descriptor{Location: location})
	}
	return children, nil
}

// parseLocation turns a destination into an absolute URI. Plain paths
// become file: URIs.
func parseLocation(arg string) (*url.URL, error) {
	u, err := parseURI(arg)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		return u, nil
	}
	abs, err := filepath.Abs(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", arg, err)
	}
	return FileURL(abs), nil
}

// parseURI accepts URIs and file paths. Windows drive letters are not
// taken for a scheme, and backslashes are normalised.
func parseURI(arg string) (*url.URL, error) {
	if isWindowsPath(arg) {
		return FileURL(arg), nil
	}
	u, err := url.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid URI %q: %w", arg, err)
	}
	if u.Scheme == "" && strings.Contains(u.Path, `\`) {
		u.Path = strings.ReplaceAll(u.Path, `\`, "/")
	}
	return u, nil
}

// FileURL builds a file: URI for an absolute filesystem path.
func FileURL(path string) *url.URL {
	p := filepath.ToSlash(path)
	p = strings.ReplaceAll(p, `\`, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}
}

func isWindowsPath(s string) bool {
	return len(s) >= 3 && s[1] == ':' && (s[2] == '\\' || s[2] == '/') &&
		((s[0] >= 'a' && s[0] <= 'z') || (s[0] >= 'A' && s[0] <= 'Z'))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}
