package provisioning

// Departments maps the three-character code embedded in a registration
// number to the department name.
type Departments map[string]string

var defaultDepartments = Departments{
	"001": "Civil Engineering",
	"002": "Mechanical Engineering",
	"003": "Electrical and Electronics Engineering",
	"004": "Electronics and Communication Engineering",
	"005": "Computer Science and Engineering",
	"006": "Information Technology",
	"007": "Chemical Engineering",
	"008": "Bioengineering",
	"009": "Electronics and Instrumentation Engineering",
	"010": "Mechatronics",
	"011": "Computer Science and Business Systems",
}

// DefaultDepartments returns a copy of the built-in table merged with
// overrides from configuration.
func DefaultDepartments(overrides map[string]string) Departments {
	table := make(Departments, len(defaultDepartments)+len(overrides))
	for code, name := range defaultDepartments {
		table[code] = name
	}
	for code, name := range overrides {
		table[code] = name
	}
	return table
}

// Lookup returns the department name, or UnknownDepartment on a miss.
func (d Departments) Lookup(code string) string {
	if name, ok := d[code]; ok && name != "" {
		return name
	}
	return UnknownDepartment
}
