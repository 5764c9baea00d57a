// Package fixture reads mock configurations declared in YAML or TOML files.
//
// A fixture document has a version, which must satisfy SupportedVersions, and a list of mocks.
// Each mock is either a bare blockchain identifier or a table with the fields of evm.Config or
// solana.Config, chosen by the family of its blockchain:
//
//	version: 1.0.0
//	mocks:
//	  - bsc
//	  - blockchain: ethereum
//	    wallet: metamask
//	    balance:
//	      for: "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
//	      return: "1000000000000000000"
//	  - blockchain: solana
//	    transaction:
//	      instructions:
//	        - to: "11111111111111111111111111111111"
//	          api: raw
//
// Errors are declared as messages with an error field. Solana apis can only be "raw", which keeps
// instruction data as base58. Large integers should be quoted since YAML and TOML decode numbers
// into 64 bit values.
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml/v2"
	"github.com/suzuki-shunsuke/go-convmap/convmap"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/web3-mock/chain"
)

// SupportedVersions is the constraint the version of a fixture document must satisfy.
const SupportedVersions = "^1"

// RawAPI is the only api a Solana mock can declare in a fixture.
const RawAPI = "raw"

var (
	ErrUnsupportedFormat  = errors.New("unsupported fixture format")
	ErrUnsupportedVersion = errors.New("unsupported fixture version")
	ErrInvalidMock        = errors.New("invalid fixture mock")
)

// Format is the encoding of a fixture document.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf returns the format of the file at path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Document is a decoded fixture document.
type Document struct {
	Version string `yaml:"version" toml:"version"`
	Mocks   []any  `yaml:"mocks" toml:"mocks"`
}

// Load reads the fixture file at path and returns its mock configurations.
func Load(path string) ([]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	configs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}

	return configs, nil
}

// Parse decodes a fixture document and returns its mock configurations: strings for bare
// blockchains, evm.Config and solana.Config values otherwise.
func Parse(data []byte, format Format) ([]any, error) {
	var doc Document
	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case TOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}

	configs := make([]any, 0, len(doc.Mocks))
	for i, m := range doc.Mocks {
		cfg, err := convert(m)
		if err != nil {
			return nil, fmt.Errorf("mock %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}

	return configs, nil
}

func checkVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%w: missing version", ErrUnsupportedVersion)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnsupportedVersion, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, v, SupportedVersions)
	}

	return nil
}

func convert(m any) (any, error) {
	if s, ok := m.(string); ok {
		return s, nil
	}

	converted, err := convmap.Convert(m, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMock, err)
	}
	table, ok := converted.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a blockchain or a table, got %T", ErrInvalidMock, m)
	}
	raw, err := json.Marshal(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMock, err)
	}

	blockchain, _ := table["blockchain"].(string)
	family, err := chain.Classify(blockchain)
	if err != nil {
		return nil, err
	}

	switch family {
	case chain.EVM:
		var e evmEntry
		if err = decode(raw, &e); err != nil {
			return nil, err
		}

		return e.build(), nil
	case chain.Solana:
		var e solanaEntry
		if err = decode(raw, &e); err != nil {
			return nil, err
		}

		return e.build()
	default:
		return nil, fmt.Errorf("%w: unsupported family %s", ErrInvalidMock, family)
	}
}

func decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMock, err)
	}

	return nil
}

func fail(msg string) error {
	if msg == "" {
		return nil
	}

	return errors.New(msg)
}
