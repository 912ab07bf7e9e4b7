package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultDescriptors is the static, versioned feed list used when no feed
// file is configured.
var DefaultDescriptors = []Descriptor{
	{Name: "Designboom", URL: "https://www.designboom.com/feed/"},
	{Name: "Creative Bloq", URL: "https://www.creativebloq.com/feed"},
	{Name: "Dezeen", URL: "https://www.dezeen.com/feed/"},
	{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
	{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
	{Name: "It's Nice That", URL: "https://www.itsnicethat.com/feed"},
}

// descriptorFile is the YAML shape of an external feed file.
type descriptorFile struct {
	Feeds []Descriptor `yaml:"feeds"`
}

// LoadDescriptors reads feed descriptors from a YAML file. Entries missing a
// name or URL are rejected so a bad file is caught at startup, not mid-run.
func LoadDescriptors(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed file: %w", err)
	}

	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}
	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("feed file %s lists no feeds", path)
	}
	for i, d := range file.Feeds {
		if d.Name == "" || d.URL == "" {
			return nil, fmt.Errorf("feed entry %d is missing a name or url", i)
		}
	}
	return file.Feeds, nil
}
