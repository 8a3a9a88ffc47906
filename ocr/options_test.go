package ocr

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if !reflect.DeepEqual(opts, Options{}) {
		t.Errorf("DefaultOptions() = %+v, want zero value", opts)
	}
	if args := opts.Args(); len(args) != 0 {
		t.Errorf("default Args() = %v, want none", args)
	}

	// Each call returns an independent value.
	a := DefaultOptions()
	a.Languages = append(a.Languages, "en-US")
	if b := DefaultOptions(); len(b.Languages) != 0 {
		t.Error("DefaultOptions shares state between calls")
	}
}

func TestOptions_Args(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"empty", Options{}, nil},
		{"fast", Options{Fast: true}, []string{"--fast"}},
		{"languages", Options{Languages: []string{"en-US", "fr-FR"}}, []string{"--languages", "en-US,fr-FR"}},
		{"duplicate languages", Options{Languages: []string{"en-US", "fr-FR", "en-US"}}, []string{"--languages", "en-US,fr-FR"}},
		{"correction", Options{Correction: true}, []string{"--correction"}},
		{"custom words", Options{CustomWords: []string{"GmbH", "swiftocr", "GmbH"}}, []string{"--custom-words", "GmbH,swiftocr"}},
		{"custom words file", Options{CustomWordsFile: "/tmp/words.txt"}, []string{"--custom-words-file", "/tmp/words.txt"}},
		{
			"everything",
			Options{
				Fast:            true,
				Languages:       []string{"de-DE"},
				Correction:      true,
				CustomWords:     []string{"GmbH"},
				CustomWordsFile: "words.txt",
			},
			[]string{"--fast", "--languages", "de-DE", "--correction", "--custom-words", "GmbH", "--custom-words-file", "words.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Args(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero", Options{}, false},
		{"valid", Options{Languages: []string{"en-US"}, CustomWords: []string{"a", "b"}}, false},
		{"empty language", Options{Languages: []string{"en-US", ""}}, true},
		{"blank custom word", Options{CustomWords: []string{"  "}}, true},
		{"comma in language", Options{Languages: []string{"en-US,fr-FR"}}, true},
		{"comma in custom word", Options{CustomWords: []string{"a,b"}}, true},
		{"padded file", Options{CustomWordsFile: " words.txt"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error %v does not wrap ErrInvalidOptions", err)
			}
		})
	}
}

func TestOptions_Clone(t *testing.T) {
	orig := Options{Languages: []string{"en-US"}, CustomWords: []string{"a"}}
	c := orig.Clone()
	c.Languages[0] = "fr-FR"
	c.CustomWords = append(c.CustomWords, "b")

	if orig.Languages[0] != "en-US" {
		t.Error("Clone shares the Languages slice")
	}
	if len(orig.CustomWords) != 1 {
		t.Error("Clone shares the CustomWords slice")
	}
}

func TestOptions_AddLanguagesAndWords(t *testing.T) {
	base := Options{Languages: []string{"en-US"}}
	got := base.AddLanguages("de-DE", "en-US", "de-DE").AddCustomWords("GmbH", "AG", "GmbH")

	if !reflect.DeepEqual(got.Languages, []string{"en-US", "de-DE"}) {
		t.Errorf("Languages = %v", got.Languages)
	}
	if !reflect.DeepEqual(got.CustomWords, []string{"GmbH", "AG"}) {
		t.Errorf("CustomWords = %v", got.CustomWords)
	}
	if !reflect.DeepEqual(base.Languages, []string{"en-US"}) {
		t.Errorf("AddLanguages modified the receiver: %v", base.Languages)
	}
	if empty := (Options{}).AddLanguages(); empty.Languages != nil {
		t.Errorf("AddLanguages() on empty options = %v, want nil", empty.Languages)
	}
}

func TestParseOptions(t *testing.T) {
	data := []byte(`
fast: true
languages: [en-US, de-DE]
correction: true
custom_words:
  - swiftocr
custom_words_file: /etc/ocr/words.txt
`)
	opts, err := ParseOptions(data)
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	want := Options{
		Fast:            true,
		Languages:       []string{"en-US", "de-DE"},
		Correction:      true,
		CustomWords:     []string{"swiftocr"},
		CustomWordsFile: "/etc/ocr/words.txt",
	}
	if !reflect.DeepEqual(opts, want) {
		t.Errorf("ParseOptions() = %+v, want %+v", opts, want)
	}
}

func TestParseOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "speed: fast\n"},
		{"wrong type", "fast: [1, 2]\n"},
		{"invalid entry", "languages: ['en-US,de-DE']\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptions([]byte(tt.data))
			if !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("ParseOptions() error = %v, want ErrInvalidOptions", err)
			}
		})
	}
}

func TestParseOptions_Empty(t *testing.T) {
	opts, err := ParseOptions(nil)
	if err != nil {
		t.Fatalf("ParseOptions(nil) error = %v", err)
	}
	if !reflect.DeepEqual(opts, Options{}) {
		t.Errorf("ParseOptions(nil) = %+v", opts)
	}
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr.yaml")
	if err := os.WriteFile(path, []byte("languages: [fr-FR]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions() error = %v", err)
	}
	if !reflect.DeepEqual(opts.Languages, []string{"fr-FR"}) {
		t.Errorf("Languages = %v", opts.Languages)
	}

	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadOptions(missing) error = %v, want os.ErrNotExist", err)
	}
}
