// =============================================================================
// Expense Intake - Reference Data Provider
// =============================================================================
//
// The provider holds the allowed categories and departments. It is built once
// at startup and is read-only afterwards, so it can be shared by concurrent
// requests without locking.
//
// FILE FORMAT:
//   Each file is a list of {id, name} objects. JSON is accepted as-is since
//   it is a subset of YAML:
//
//     [ { "id": 1, "name": "Travel" }, { "id": 2, "name": "Meals" } ]
//
// =============================================================================

package refdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option is one allowed value as listed to clients.
type Option struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Provider answers membership questions for categories and departments.
type Provider struct {
	categories  []Option
	departments []Option

	categorySet   map[string]struct{}
	departmentSet map[string]struct{}
}

// New builds a provider from plain name lists. IDs are assigned from 1 in
// list order.
func New(categories, departments []string) *Provider {
	return NewFromOptions(toOptions(categories), toOptions(departments))
}

// NewFromOptions builds a provider from option lists. Names are trimmed.
func NewFromOptions(categories, departments []Option) *Provider {
	p := &Provider{
		categories:    trimOptions(categories),
		departments:   trimOptions(departments),
		categorySet:   make(map[string]struct{}, len(categories)),
		departmentSet: make(map[string]struct{}, len(departments)),
	}
	for _, o := range p.categories {
		p.categorySet[key(o.Name)] = struct{}{}
	}
	for _, o := range p.departments {
		p.departmentSet[key(o.Name)] = struct{}{}
	}
	return p
}

// Load reads both lists from disk.
//
// PARAMETERS:
//   - categoriesPath:  file holding the category options.
//   - departmentsPath: file holding the department options.
//
// RETURNS:
//   - The provider.
//   - An error naming the file that is missing or malformed.
func Load(categoriesPath, departmentsPath string) (*Provider, error) {
	categories, err := loadOptions(categoriesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	departments, err := loadOptions(departmentsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	return NewFromOptions(categories, departments), nil
}

// Categories returns the allowed categories in file order.
func (p *Provider) Categories() []Option {
	return append([]Option(nil), p.categories...)
}

// Departments returns the allowed departments in file order.
func (p *Provider) Departments() []Option {
	return append([]Option(nil), p.departments...)
}

// HasCategory reports whether name is an allowed category.
// The comparison trims whitespace and ignores case.
func (p *Provider) HasCategory(name string) bool {
	_, ok := p.categorySet[key(name)]
	return ok
}

// HasDepartment reports whether name is an allowed department.
// The comparison trims whitespace and ignores case.
func (p *Provider) HasDepartment(name string) bool {
	_, ok := p.departmentSet[key(name)]
	return ok
}

func loadOptions(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing data file %s: %w", path, err)
	}

	var opts []Option
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for i, o := range opts {
		if strings.TrimSpace(o.Name) == "" {
			return nil, fmt.Errorf("%s: entry %d has an empty name", path, i+1)
		}
	}
	return opts, nil
}

func toOptions(names []string) []Option {
	out := make([]Option, len(names))
	for i, n := range names {
		out[i] = Option{ID: i + 1, Name: n}
	}
	return out
}

func trimOptions(opts []Option) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = Option{ID: o.ID, Name: strings.TrimSpace(o.Name)}
	}
	return out
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
