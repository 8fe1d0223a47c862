// SPDX-FileCopyrightText: 2014-2021 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"testing"
	"time"
)

type testDate struct {
	time time.Time
}

var testDateData = []testDate{
	{time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)},
	{time.Date(333, time.January, 27, 0, 0, 0, 0, time.UTC)},
	{time.Date(1582, time.October, 15, 0, 0, 0, 0, time.UTC)},
	{time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)},
	{time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
	{time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)},
	{time.Date(2015, time.June, 28, 0, 0, 0, 0, time.UTC)},
	{time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)},
}

func TestDayDateRoundTrip(t *testing.T) {
	for i, d := range testDateData {
		dd := convertTimeToDayDate(d.time)
		got := convertDaydateToTime(dd)
		if !got.Equal(d.time) {
			t.Fatalf("case %d: DayDate round trip = %s, want %s (daydate %d)", i, got, d.time, dd)
		}
	}
}

func TestSeconddateRoundTrip(t *testing.T) {
	for i, d := range testDateData {
		ts := d.time.Add(12*time.Hour + 34*time.Minute + 56*time.Second)
		sd := convertTimeToSeconddate(ts)
		got := convertSeconddateToTime(sd)
		if !got.Equal(ts) {
			t.Fatalf("case %d: Seconddate round trip = %s, want %s", i, got, ts)
		}
	}
}

func TestLongdateRoundTrip(t *testing.T) {
	for i, d := range testDateData {
		ts := d.time.Add(12*time.Hour + 34*time.Minute + 56*time.Second + 1234500*time.Nanosecond)
		ld := convertTimeToLongdate(ts)
		got := convertLongdateToTime(ld)
		// longdate truncates to 100ns (7 digit) precision.
		want := ts.Truncate(100 * time.Nanosecond)
		if !got.Equal(want) {
			t.Fatalf("case %d: Longdate round trip = %s, want %s", i, got, want)
		}
	}
}

func TestSecondtimeRoundTrip(t *testing.T) {
	tests := []time.Time{
		time.Date(2020, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, time.May, 1, 12, 34, 56, 0, time.UTC),
		time.Date(2020, time.May, 1, 23, 59, 59, 0, time.UTC),
	}
	for i, tt := range tests {
		st := convertTimeToSecondtime(tt)
		got := convertSecondtimeToTime(st)
		wantSeconds := tt.Hour()*3600 + tt.Minute()*60 + tt.Second()
		gotSeconds := got.Hour()*3600 + got.Minute()*60 + got.Second()
		if gotSeconds != wantSeconds {
			t.Fatalf("case %d: Secondtime round trip seconds-of-day = %d, want %d", i, gotSeconds, wantSeconds)
		}
	}
}
