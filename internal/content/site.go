// Package content holds the static panels of the landing page: title,
// donation links, bank accounts, QRIS, social accounts and the niat.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSite []byte

// Link is an entry of the landing page link list. Panel names the partial
// opened by the link, if any.
type Link struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Href     string `yaml:"href"`
	Panel    string `yaml:"panel"`
}

type Bank struct {
	Name    string `yaml:"name"`
	Account string `yaml:"account"`
	Holder  string `yaml:"holder"`
}

// Digits returns the account number without separators, as it is copied.
func (b Bank) Digits() string {
	return strings.Join(strings.Fields(b.Account), "")
}

type Transfer struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Banks       []Bank `yaml:"banks"`
}

type QRIS struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
	Caption     string `yaml:"caption"`
	Button      string `yaml:"button"`
}

type Account struct {
	Name     string `yaml:"name"`
	Platform string `yaml:"platform"`
	URL      string `yaml:"url"`
}

type Social struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	Accounts    []Account `yaml:"accounts"`
}

type Initiator struct {
	Name  string `yaml:"name"`
	Short string `yaml:"short"`
}

type Initiators struct {
	Heading string      `yaml:"heading"`
	Members []Initiator `yaml:"members"`
}

type Quote struct {
	Text   string `yaml:"text"`
	Source string `yaml:"source"`
}

type Niat struct {
	Heading string `yaml:"heading"`
	Text    string `yaml:"text"`
}

type Footer struct {
	Tagline   string `yaml:"tagline"`
	Copyright string `yaml:"copyright"`
}

// Site is the content of the landing page.
type Site struct {
	Title       string     `yaml:"title"`
	Tagline     string     `yaml:"tagline"`
	Description string     `yaml:"description"`
	Links       []Link     `yaml:"links"`
	Transfer    Transfer   `yaml:"transfer"`
	QRIS        QRIS       `yaml:"qris"`
	Social      Social     `yaml:"social"`
	Initiators  Initiators `yaml:"initiators"`
	Quote       Quote      `yaml:"quote"`
	Niat        Niat       `yaml:"niat"`
	Footer      Footer     `yaml:"footer"`

	// Markdown fields rendered once at load time.
	DescriptionHTML template.HTML `yaml:"-"`
	NiatHTML        template.HTML `yaml:"-"`
}

// Copyright returns the footer notice for the given year.
func (s *Site) Copyright(now time.Time) string {
	return "© " + strconv.Itoa(now.Year()) + " " + s.Footer.Copyright
}

// Default returns the embedded site content.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// Load reads the site content from path, or the embedded default when path
// is empty.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site content: %w", err)
	}
	site, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return site, nil
}

// Parse decodes YAML site content and renders its markdown fields.
func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse site content: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	md := goldmark.New()
	var err error
	if s.DescriptionHTML, err = render(md, s.Description); err != nil {
		return nil, fmt.Errorf("render description: %w", err)
	}
	if s.NiatHTML, err = render(md, s.Niat.Text); err != nil {
		return nil, fmt.Errorf("render niat: %w", err)
	}
	return &s, nil
}

func (s *Site) validate() error {
	var errs []error
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, errors.New("title is required"))
	}
	for i, l := range s.Links {
		if l.Title == "" || l.Href == "" {
			errs = append(errs, fmt.Errorf("link %d: title and href are required", i))
		}
	}
	for i, b := range s.Transfer.Banks {
		if b.Name == "" || b.Account == "" {
			errs = append(errs, fmt.Errorf("bank %d: name and account are required", i))
		}
	}
	for i, a := range s.Social.Accounts {
		if !strings.HasPrefix(a.URL, "https://") {
			errs = append(errs, fmt.Errorf("social account %d: url must be https", i))
		}
	}
	return errors.Join(errs...)
}

// goldmark escapes raw HTML unless configured otherwise, so the output is
// safe to mark as template.HTML.
func render(md goldmark.Markdown, src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
