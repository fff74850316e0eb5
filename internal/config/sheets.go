package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// SheetsLayout maps each network to the spreadsheet tabs it is imported from.
type SheetsLayout struct {
	Networks map[string]NetworkLayout `yaml:"networks" validate:"required,min=1,dive,keys,oneof=facebook instagram twitter youtube,endkeys"`
}

// NetworkLayout is the sheet-range configuration of one network.
type NetworkLayout struct {
	// SpreadsheetID is the Google spreadsheet id; ignored by the xlsx source.
	SpreadsheetID string `yaml:"spreadsheetId"`
	// Tabs are range labels, imported in this order.
	Tabs []string `yaml:"tabs" validate:"required,min=1,dive,required"`
	// Categories are section labels in sheet order. The first entry names the
	// section in effect before any marker row is seen.
	Categories []string `yaml:"categories" validate:"required,min=1,dive,required"`
	// Columns overrides zero-based column positions by field name.
	Columns map[string]int `yaml:"columns,omitempty" validate:"omitempty,dive,keys,required,endkeys,min=0"`
}

// LoadSheets reads and validates a sheets layout file.
func LoadSheets(path string) (*SheetsLayout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheets layout: %w", err)
	}
	defer f.Close()

	layout, err := DecodeSheets(f)
	if err != nil {
		return nil, fmt.Errorf("sheets layout %s: %w", path, err)
	}
	return layout, nil
}

// DecodeSheets parses a sheets layout document, rejecting unknown fields.
func DecodeSheets(r io.Reader) (*SheetsLayout, error) {
	layout := &SheetsLayout{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(layout); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}

	if err := validate.Struct(layout); err != nil {
		return nil, err
	}
	return layout, nil
}

// Network returns the layout of the given network.
func (l *SheetsLayout) Network(name string) (NetworkLayout, bool) {
	if l == nil {
		return NetworkLayout{}, false
	}
	nl, ok := l.Networks[name]
	return nl, ok
}
