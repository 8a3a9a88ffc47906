package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options configures a recognition call. The zero value is valid and
// equivalent to DefaultOptions.
type Options struct {
	// Fast trades accuracy for speed.
	Fast bool `yaml:"fast"`

	// Languages lists recognition languages in priority order
	// (for example "en-US" for swiftocr or "eng" for Tesseract).
	// Duplicates are ignored.
	Languages []string `yaml:"languages"`

	// Correction enables language correction of the recognized text.
	Correction bool `yaml:"correction"`

	// CustomWords supplements the recognizer's vocabulary. Duplicates are
	// ignored.
	CustomWords []string `yaml:"custom_words"`

	// CustomWordsFile names a file of additional words, one per line.
	CustomWordsFile string `yaml:"custom_words_file"`
}

// DefaultOptions returns a new default configuration.
func DefaultOptions() Options {
	return Options{
		Fast:            false,
		Languages:       nil,
		Correction:      false,
		CustomWords:     nil,
		CustomWordsFile: "",
	}
}

// Clone returns a deep copy of the options.
func (o Options) Clone() Options {
	newOpts := o
	if o.Languages != nil {
		newOpts.Languages = append([]string(nil), o.Languages...)
	}
	if o.CustomWords != nil {
		newOpts.CustomWords = append([]string(nil), o.CustomWords...)
	}
	return newOpts
}

// AddLanguages returns a copy of o with langs appended, skipping languages
// already present.
func (o Options) AddLanguages(langs ...string) Options {
	n := o.Clone()
	n.Languages = uniq(append(n.Languages, langs...))
	return n
}

// AddCustomWords returns a copy of o with words appended, skipping words
// already present.
func (o Options) AddCustomWords(words ...string) Options {
	n := o.Clone()
	n.CustomWords = uniq(append(n.CustomWords, words...))
	return n
}

// Validate checks that every option can be passed to a recognizer.
// List entries are joined with commas on the command line, so they must be
// non-empty and must not contain a comma.
func (o Options) Validate() error {
	if err := validateList("languages", o.Languages); err != nil {
		return err
	}
	if err := validateList("custom words", o.CustomWords); err != nil {
		return err
	}
	if strings.TrimSpace(o.CustomWordsFile) != o.CustomWordsFile {
		return fmt.Errorf("%w: custom words file %q has surrounding whitespace", ErrInvalidOptions, o.CustomWordsFile)
	}
	return nil
}

func validateList(name string, values []string) error {
	for i, v := range values {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s entry %d is empty", ErrInvalidOptions, name, i)
		}
		if strings.Contains(v, ",") {
			return fmt.Errorf("%w: %s entry %q contains a comma", ErrInvalidOptions, name, v)
		}
	}
	return nil
}

// Args serializes the options as swiftocr command-line arguments. Options
// left at their default produce no arguments.
func (o Options) Args() []string {
	var args []string

	if o.Fast {
		args = append(args, "--fast")
	}
	if langs := uniq(o.Languages); len(langs) > 0 {
		args = append(args, "--languages", strings.Join(langs, ","))
	}
	if o.Correction {
		args = append(args, "--correction")
	}
	if words := uniq(o.CustomWords); len(words) > 0 {
		args = append(args, "--custom-words", strings.Join(words, ","))
	}
	if o.CustomWordsFile != "" {
		args = append(args, "--custom-words-file", o.CustomWordsFile)
	}

	return args
}

// uniq drops repeated values, keeping the first occurrence of each.
func uniq(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// LoadOptions reads Options from a YAML file:
//
//	fast: true
//	languages: [en-US, de-DE]
//	correction: true
//	custom_words: [swiftocr, GmbH]
//	custom_words_file: /etc/ocr/words.txt
//
// The loaded options are validated.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading options: %w", err)
	}
	return ParseOptions(data)
}

// ParseOptions decodes and validates YAML options. Unknown keys are an error.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
