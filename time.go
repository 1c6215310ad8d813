// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"time"
)

var (
	errInvalidUTCTime         = errors.New("invalid UTCTime")
	errInvalidGeneralizedTime = errors.New("invalid GeneralizedTime")
)

// parseUTCTime parses the DER form of UTCTime: YYMMDDhhmmssZ. Two-digit years
// below 50 are in the 21st century (RFC 5280, Section 4.1.2.5.1).
func parseUTCTime(b []byte) (time.Time, error) {
	s := string(b)
	if len(s) != 13 || s[12] != 'Z' {
		return time.Time{}, errInvalidUTCTime
	}
	year := atoiN[int](s, 2)
	month := atoiN[time.Month](s[2:], 2)
	day := atoiN[int](s[4:], 2)
	hour := atoiN[int](s[6:], 2)
	minute := atoiN[int](s[8:], 2)
	second := atoiN[int](s[10:], 2)
	if year < 0 || month < 0 || day < 0 || hour < 0 || minute < 0 || second < 0 {
		return time.Time{}, errInvalidUTCTime
	}
	if year < 50 {
		year += 2000
	} else {
		year += 1900
	}
	ret := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day || ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return time.Time{}, errInvalidUTCTime
	}
	return ret, nil
}

// parseGeneralizedTime parses the DER form of GeneralizedTime:
// YYYYMMDDhhmmss[.f]Z. The fraction uses a full stop, has at least one and at
// most 9 digits and no trailing zero.
func parseGeneralizedTime(b []byte) (time.Time, error) {
	s := string(b)
	if len(s) < 15 || s[len(s)-1] != 'Z' {
		return time.Time{}, errInvalidGeneralizedTime
	}
	year := atoiN[int](s, 4)
	month := atoiN[time.Month](s[4:], 2)
	day := atoiN[int](s[6:], 2)
	hour := atoiN[int](s[8:], 2)
	minute := atoiN[int](s[10:], 2)
	second := atoiN[int](s[12:], 2)
	if year < 0 || month < 0 || day < 0 || hour < 0 || minute < 0 || second < 0 {
		return time.Time{}, errInvalidGeneralizedTime
	}
	nsec := 0
	if frac := s[14 : len(s)-1]; frac != "" {
		digits := frac[1:]
		if frac[0] != '.' || len(digits) == 0 || len(digits) > 9 || digits[len(digits)-1] == '0' {
			return time.Time{}, errInvalidGeneralizedTime
		}
		nsec = atoiN[int](digits, len(digits))
		if nsec < 0 {
			return time.Time{}, errInvalidGeneralizedTime
		}
		for range 9 - len(digits) {
			nsec *= 10
		}
	}
	ret := time.Date(year, month, day, hour, minute, second, nsec, time.UTC)
	if ret.Year() != year || ret.Month() != month || ret.Day() != day || ret.Hour() != hour || ret.Minute() != minute || ret.Second() != second {
		return time.Time{}, errInvalidGeneralizedTime
	}
	return ret, nil
}

// atoiN parses exactly n decimal digits from the start of s. It returns -1 if s
// is too short or contains a non-digit.
func atoiN[T ~int | ~int64](s string, n int) (i T) {
	if len(s) < n {
		return -1
	}
	for j := 0; j < n; j++ {
		if s[j] < '0' || '9' < s[j] {
			return -1
		}
		i = i*10 + T(s[j]-'0')
	}
	return i
}
