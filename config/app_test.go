package config

import (
	"reflect"
	"testing"
)

func TestParseIDList(t *testing.T) {
	cases := []struct {
		in   string
		want []int64
	}{
		{"", nil},
		{"123", []int64{123}},
		{"123, 456,789", []int64{123, 456, 789}},
		{"123,notanid,456", []int64{123, 456}},
		{" , ,", nil},
	}
	for _, c := range cases {
		if got := parseIDList(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("parseIDList(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	c := &Config{AdminIDs: []int64{900, 901}}
	if !c.IsAdmin(900) {
		t.Error("900 not recognized")
	}
	if c.IsAdmin(100) {
		t.Error("100 passed the allow-list")
	}
}

func TestValidate(t *testing.T) {
	c := &Config{}
	if err := c.Validate(); err == nil {
		t.Error("empty config validated")
	}
	c.BotToken = "token"
	if err := c.Validate(); err == nil {
		t.Error("config without staff validated")
	}
	c.StaffIDs = []int64{111}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
