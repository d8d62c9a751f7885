package provisioning

import (
	"errors"
	"strconv"
	"strings"
)

// UnknownDepartment is used when the department code is not in the table.
const UnknownDepartment = "Unknown Department"

// minLocalPartLength covers the year digits at [1:3] and the department
// code at [3:6].
const minLocalPartLength = 6

var (
	// ErrEmailParse is returned for a missing email or an unusable local part.
	ErrEmailParse = errors.New("cannot parse email local part")
	// ErrYearParse is returned when the year digits are not numeric.
	ErrYearParse = errors.New("cannot parse year from registration number")
)

// StudentDetails are the profile fields derived from a university email.
type StudentDetails struct {
	RegistrationNumber string
	Year               int
	Department         string
}

// DeriveStudentDetails parses "<regno>@domain". The whole local part is the
// registration number, local[1:3] is the two-digit year of joining and
// local[3:6] is the department code.
func DeriveStudentDetails(email string, departments Departments) (StudentDetails, error) {
	local, _, found := strings.Cut(strings.TrimSpace(email), "@")
	if !found || len(local) < minLocalPartLength {
		return StudentDetails{}, ErrEmailParse
	}

	yearDigits := local[1:3]
	if !isDigits(yearDigits) {
		return StudentDetails{}, ErrYearParse
	}
	year, err := strconv.Atoi(yearDigits)
	if err != nil {
		return StudentDetails{}, ErrYearParse
	}

	return StudentDetails{
		RegistrationNumber: local,
		Year:               2000 + year,
		Department:         departments.Lookup(local[3:6]),
	}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
