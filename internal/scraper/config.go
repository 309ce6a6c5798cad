package scraper

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Selectors locates every element the scraper reads. The defaults match the
// apartments.com listing markup; a config file can override any of them.
type Selectors struct {
	ListingLink      string `yaml:"listing_link"`
	NextPage         string `yaml:"next_page"`
	ShowUnavailable  string `yaml:"show_unavailable"`
	Address          string `yaml:"address"`
	PricingView      string `yaml:"pricing_view"`
	ActiveTab        string `yaml:"active_tab"`
	UnitGroup        string `yaml:"unit_group"`
	UnitGroupDetails string `yaml:"unit_group_details"`
	UnitRow          string `yaml:"unit_row"`
	UnitLabel        string `yaml:"unit_label"`
	UnitRent         string `yaml:"unit_rent"`
	UnitSqft         string `yaml:"unit_sqft"`
	UnitAvailable    string `yaml:"unit_available"`
	PriceHeader      string `yaml:"price_header"`
	PriceCaption     string `yaml:"price_caption"`
	InfoPanel        string `yaml:"info_panel"`
	InfoColumn       string `yaml:"info_column"`
	InfoLabel        string `yaml:"info_label"`
	InfoDetail       string `yaml:"info_detail"`
}

type Config struct {
	SearchURL         string        `yaml:"search_url"`
	OutputPath        string        `yaml:"output"`
	Headless          bool          `yaml:"headless"`
	UserAgent         string        `yaml:"user_agent"`
	PageWait          time.Duration `yaml:"page_wait"`
	PageTimeout       time.Duration `yaml:"page_timeout"`
	RequestsPerMinute float64       `yaml:"requests_per_minute"`
	// MaxPages caps search-result pages; 0 follows "next" until it disappears.
	MaxPages  int       `yaml:"max_pages"`
	Selectors Selectors `yaml:"selectors"`
}

func DefaultSelectors() Selectors {
	const col = " span:not(.screenReaderOnly)"
	return Selectors{
		ListingLink:      "a.property-link[href]",
		NextPage:         ".next",
		ShowUnavailable:  "button.js-showUnavailableFloorPlansButton",
		Address:          ".propertyAddressContainer",
		PricingView:      "div#pricingView",
		ActiveTab:        "div.tab-section.active",
		UnitGroup:        "div.pricingGridItem.multiFamily.hasUnitGrid.v3.UnitLevel_var2",
		UnitGroupDetails: "span.detailsTextWrapper",
		UnitRow:          "li.unitContainer.js-unitContainerV3",
		UnitLabel:        "div.unitColumn.column" + col,
		UnitRent:         "div.pricingColumn.column" + col,
		UnitSqft:         "div.sqftColumn.column" + col,
		UnitAvailable:    "div.availableColumn.column" + col,
		PriceHeader:      "div#propertyNameRow.propertyNameRow",
		PriceCaption:     "span.display-name-caption",
		InfoPanel:        "div.priceBedRangeInfoContainer",
		InfoColumn:       "li.column",
		InfoLabel:        "p.rentInfoLabel",
		InfoDetail:       "p.rentInfoDetail",
	}
}

func DefaultConfig() Config {
	return Config{
		Headless:          true,
		UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		PageWait:          3 * time.Second,
		PageTimeout:       60 * time.Second,
		RequestsPerMinute: 20,
		Selectors:         DefaultSelectors(),
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scraper config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scraper config %s: %w", path, err)
	}
	cfg.Selectors = mergeSelectors(cfg.Selectors, DefaultSelectors())
	return cfg, nil
}

// mergeSelectors fills empty selectors from defaults so a config file may
// override only the ones that changed.
func mergeSelectors(s, def Selectors) Selectors {
	pairs := []struct {
		dst *string
		src string
	}{
		{&s.ListingLink, def.ListingLink},
		{&s.NextPage, def.NextPage},
		{&s.ShowUnavailable, def.ShowUnavailable},
		{&s.Address, def.Address},
		{&s.PricingView, def.PricingView},
		{&s.ActiveTab, def.ActiveTab},
		{&s.UnitGroup, def.UnitGroup},
		{&s.UnitGroupDetails, def.UnitGroupDetails},
		{&s.UnitRow, def.UnitRow},
		{&s.UnitLabel, def.UnitLabel},
		{&s.UnitRent, def.UnitRent},
		{&s.UnitSqft, def.UnitSqft},
		{&s.UnitAvailable, def.UnitAvailable},
		{&s.PriceHeader, def.PriceHeader},
		{&s.PriceCaption, def.PriceCaption},
		{&s.InfoPanel, def.InfoPanel},
		{&s.InfoColumn, def.InfoColumn},
		{&s.InfoLabel, def.InfoLabel},
		{&s.InfoDetail, def.InfoDetail},
	}
	for _, p := range pairs {
		if strings.TrimSpace(*p.dst) == "" {
			*p.dst = p.src
		}
	}
	return s
}

var (
	ErrMissingSearchURL = errors.New("search URL is required")
	ErrOutputNotCSV     = errors.New("output path must end with .csv")
)

func (c Config) Validate() error {
	if strings.TrimSpace(c.SearchURL) == "" {
		return ErrMissingSearchURL
	}
	if !strings.HasSuffix(strings.ToLower(c.OutputPath), ".csv") {
		return ErrOutputNotCSV
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive, got %v", c.RequestsPerMinute)
	}
	return nil
}
