package validation

// Deadlines travel as plain DD.MM.YYYY strings, so date checking is a pure
// text-and-calendar rule with no timezone involved.

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsValidDate reports whether s is a real calendar date in strict DD.MM.YYYY
// form: exactly two digits, a dot, two digits, a dot, four digits, with the
// year in [1000, 3000] and the day valid for the month (leap years included).
func IsValidDate(s string) bool {
	if len(s) != 10 || s[2] != '.' || s[5] != '.' {
		return false
	}
	for i, c := range []byte(s) {
		if i == 2 || i == 5 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}

	day := int(s[0]-'0')*10 + int(s[1]-'0')
	month := int(s[3]-'0')*10 + int(s[4]-'0')
	year := int(s[6]-'0')*1000 + int(s[7]-'0')*100 + int(s[8]-'0')*10 + int(s[9]-'0')

	if year < 1000 || year > 3000 || month == 0 || month > 12 {
		return false
	}

	length := monthLengths[month-1]
	if month == 2 && isLeapYear(year) {
		length = 29
	}
	return day >= 1 && day <= length
}

func isLeapYear(year int) bool {
	return year%400 == 0 || (year%4 == 0 && year%100 != 0)
}

// ParseDate decomposes a string already accepted by IsValidDate into its
// day, month and year parts. ok is false when the string is not valid.
func ParseDate(s string) (day, month, year int, ok bool) {
	if !IsValidDate(s) {
		return 0, 0, 0, false
	}
	day = int(s[0]-'0')*10 + int(s[1]-'0')
	month = int(s[3]-'0')*10 + int(s[4]-'0')
	year = int(s[6]-'0')*1000 + int(s[7]-'0')*100 + int(s[8]-'0')*10 + int(s[9]-'0')
	return day, month, year, true
}
