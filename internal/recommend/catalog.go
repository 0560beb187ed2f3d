package recommend

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Band maps ratings up to and including MaxRating to a mood category
type Band struct {
	MaxRating int    `yaml:"max_rating"`
	Name      string `yaml:"name"`
}

// ActivityBand is the activity list for ratings up to and including MaxRating
type ActivityBand struct {
	MaxRating int      `yaml:"max_rating"`
	Items     []string `yaml:"items"`
}

// InsightTexts are the templates used by recommendation insights
type InsightTexts struct {
	InsufficientHistory string `yaml:"insufficient_history"`
	Improving           string `yaml:"improving"`
	Declining           string `yaml:"declining"`
	SleepPositive       string `yaml:"sleep_positive"`
	SleepNegative       string `yaml:"sleep_negative"`
	WeekendBetter       string `yaml:"weekend_better"`
	WeekdayStress       string `yaml:"weekday_stress"`
}

// MessageTemplate is a notification title and body
type MessageTemplate struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// NotificationTexts are the templates used by smart notifications
type NotificationTexts struct {
	Reminder MessageTemplate `yaml:"reminder"`
	Care     MessageTemplate `yaml:"care"`
	Sleep    MessageTemplate `yaml:"sleep"`
}

// Catalog is the static content the engine selects from
type Catalog struct {
	Categories           []Band              `yaml:"categories"`
	Activities           []ActivityBand      `yaml:"activities"`
	Advice               map[string][]string `yaml:"advice"`
	MoodGroups           map[string][]string `yaml:"mood_groups"`
	MotivationalMessages []string            `yaml:"motivational_messages"`
	Tags                 map[string][]string `yaml:"tags"`
	Insights             InsightTexts        `yaml:"insights"`
	Notifications        NotificationTexts   `yaml:"notifications"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
})

// DefaultCatalog returns the catalog compiled into the binary
func DefaultCatalog() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		// The embedded file is covered by tests
		panic(fmt.Sprintf("invalid embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path returns the embedded catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return defaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and checks a YAML catalog
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(c.Categories, func(i, j int) bool { return c.Categories[i].MaxRating < c.Categories[j].MaxRating })
	sort.SliceStable(c.Activities, func(i, j int) bool { return c.Activities[i].MaxRating < c.Activities[j].MaxRating })
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("catalog has no categories"))
	}
	if len(c.Activities) == 0 {
		errs = append(errs, errors.New("catalog has no activity bands"))
	}
	for _, b := range c.Categories {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("category band %d has no name", b.MaxRating))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return nil
}

// Category returns the mood category for a rating. Ratings above every band use the last one.
func (c *Catalog) Category(rating int) string {
	for _, b := range c.Categories {
		if rating <= b.MaxRating {
			return b.Name
		}
	}
	return c.Categories[len(c.Categories)-1].Name
}

// ActivitiesFor returns a copy of the activity list for a rating
func (c *Catalog) ActivitiesFor(rating int) []string {
	band := c.Activities[len(c.Activities)-1]
	for _, b := range c.Activities {
		if rating <= b.MaxRating {
			band = b
			break
		}
	}
	return append([]string{}, band.Items...)
}

// TagVocabulary returns the suggested tags grouped by family
func (c *Catalog) TagVocabulary() map[string][]string {
	out := make(map[string][]string, len(c.Tags))
	for k, v := range c.Tags {
		out[k] = append([]string(nil), v...)
	}
	return out
}
