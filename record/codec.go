package record

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"recsort/common"
)

var codePattern = regexp.MustCompile(`^[0-9]{6}$`)

/**
* Parses one delimited line into a Record. Field order is:
* code, name, date, volume, amount, max volume, min volume, max amount, min amount
 */
func Parse(line string) (*Record, error) {
	fields := strings.Split(line, common.DELIMITER)
	if len(fields) != common.NUM_FIELDS {
		return nil, formatErr(line, "expected "+strconv.Itoa(common.NUM_FIELDS)+" fields, got "+strconv.Itoa(len(fields)), nil)
	}

	date, err := time.Parse(common.DATE_LAYOUT, fields[2])
	if err != nil {
		return nil, formatErr(line, "bad date", err)
	}
	r := &Record{
		Code: fields[0],
		Name: fields[1],
		Date: date,
	}
	ints := []struct {
		name string
		dst  *int64
		src  string
	}{
		{"volume", &r.Volume, fields[3]},
		{"max volume", &r.MaxVolume, fields[5]},
		{"min volume", &r.MinVolume, fields[6]},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.ParseInt(f.src, 10, 64); err != nil {
			return nil, formatErr(line, "bad "+f.name, err)
		}
	}
	floats := []struct {
		name string
		dst  *float64
		src  string
	}{
		{"amount", &r.Amount, fields[4]},
		{"max amount", &r.MaxAmount, fields[7]},
		{"min amount", &r.MinAmount, fields[8]},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.src, 64); err != nil {
			return nil, formatErr(line, "bad "+f.name, err)
		}
	}

	if err := Validate(r); err != nil {
		err.(*common.FormatError).Text = line
		return nil, err
	}
	return r, nil
}

// Serialize is the inverse of Parse. Floats use the shortest representation
// that parses back to the same value.
func Serialize(r *Record) string {
	var b strings.Builder
	b.Grow(96)
	b.WriteString(r.Code)
	b.WriteString(common.DELIMITER)
	b.WriteString(r.Name)
	b.WriteString(common.DELIMITER)
	b.WriteString(r.Date.Format(common.DATE_LAYOUT))
	b.WriteString(common.DELIMITER)
	b.WriteString(strconv.FormatInt(r.Volume, 10))
	b.WriteString(common.DELIMITER)
	b.WriteString(formatFloat(r.Amount))
	b.WriteString(common.DELIMITER)
	b.WriteString(strconv.FormatInt(r.MaxVolume, 10))
	b.WriteString(common.DELIMITER)
	b.WriteString(strconv.FormatInt(r.MinVolume, 10))
	b.WriteString(common.DELIMITER)
	b.WriteString(formatFloat(r.MaxAmount))
	b.WriteString(common.DELIMITER)
	b.WriteString(formatFloat(r.MinAmount))
	return b.String()
}

// Validate checks the field invariants of r without modifying it. The
// returned error, if any, is a *common.FormatError.
func Validate(r *Record) error {
	switch {
	case !codePattern.MatchString(r.Code):
		return formatErr("", "code must be six digits: "+strconv.Quote(r.Code), nil)
	case r.Name == "":
		return formatErr("", "empty name", nil)
	case strings.ContainsAny(r.Name, common.DELIMITER+"\r\n"):
		return formatErr("", "name contains delimiter or newline", nil)
	case r.Date.IsZero():
		return formatErr("", "missing date", nil)
	case !isUTCDay(r.Date):
		return formatErr("", "date must be a UTC calendar day", nil)
	case r.Volume < 0:
		return formatErr("", "negative volume", nil)
	case r.MinVolume < 0:
		return formatErr("", "negative min volume", nil)
	case r.MinVolume > r.MaxVolume:
		return formatErr("", "min volume exceeds max volume", nil)
	case r.MaxVolume > r.Volume:
		return formatErr("", "max volume exceeds volume", nil)
	}

	for _, f := range []float64{r.Amount, r.MaxAmount, r.MinAmount} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatErr("", "amount is not finite", nil)
		}
	}
	switch {
	case r.Amount < 0:
		return formatErr("", "negative amount", nil)
	case r.MinAmount < 0:
		return formatErr("", "negative min amount", nil)
	case r.MinAmount > r.MaxAmount:
		return formatErr("", "min amount exceeds max amount", nil)
	case r.MaxAmount > r.Amount:
		return formatErr("", "max amount exceeds amount", nil)
	}
	return nil
}

// isUTCDay reports whether t is midnight UTC, the only form DATE_LAYOUT keeps.
func isUTCDay(t time.Time) bool {
	y, m, d := t.Date()
	return t.Location() == time.UTC && t.Equal(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatErr(line, reason string, err error) error {
	return &common.FormatError{Text: line, Reason: reason, Err: err}
}
