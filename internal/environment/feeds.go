package environment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Upstream response structures

type stationReading struct {
	StationID string `json:"stationId"`
	Value     any    `json:"value"`
}

type stationBatch struct {
	Timestamp string           `json:"timestamp"`
	Data      []stationReading `json:"data"`
}

type stationFeed struct {
	Data struct {
		Readings []stationBatch `json:"readings"`
	} `json:"data"`
}

func (f stationFeed) latest() stationBatch {
	if len(f.Data.Readings) == 0 {
		return stationBatch{}
	}
	return f.Data.Readings[0]
}

type psiItem struct {
	Timestamp        string `json:"timestamp"`
	UpdatedTimestamp string `json:"updatedTimestamp"`
	Readings         struct {
		TwentyFourHourly regionValues `json:"psi_twenty_four_hourly"`
	} `json:"readings"`
}

type psiFeed struct {
	Data struct {
		Items []psiItem `json:"items"`
	} `json:"data"`
}

func (f psiFeed) latest() psiItem {
	if len(f.Data.Items) == 0 {
		return psiItem{}
	}
	return f.Data.Items[0]
}

type uvRecord struct {
	Timestamp        string `json:"timestamp"`
	UpdatedTimestamp string `json:"updatedTimestamp"`
	Index            []struct {
		Hour  string `json:"hour"`
		Value any    `json:"value"`
	} `json:"index"`
}

func (r uvRecord) first() *float64 {
	if len(r.Index) == 0 {
		return nil
	}
	if v, ok := r.Index[0].Value.(float64); ok {
		return &v
	}
	return nil
}

type uvFeed struct {
	Data struct {
		Records []uvRecord `json:"records"`
	} `json:"data"`
}

func (f uvFeed) latest() uvRecord {
	if len(f.Data.Records) == 0 {
		return uvRecord{}
	}
	return f.Data.Records[0]
}

// regionValues is a region -> reading object that remembers the upstream
// key order, so "first numeric region" is well defined.
type regionValues struct {
	keys   []string
	values map[string]any
}

func (r *regionValues) UnmarshalJSON(b []byte) error {
	r.keys = nil
	r.values = map[string]any{}
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("psi readings: expected object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if _, seen := r.values[key]; !seen {
			r.keys = append(r.keys, key)
		}
		r.values[key] = v
	}
	_, err = dec.Token()
	return err
}

// pick returns the preferred region's value, else the first numeric value
// in upstream order, else nil.
func (r regionValues) pick(region string) *float64 {
	if len(r.keys) == 0 {
		return nil
	}
	if region == "" {
		region = DefaultRegion
	}

	if v, ok := r.values[strings.ToLower(region)].(float64); ok {
		return &v
	}
	for _, k := range r.keys {
		if v, ok := r.values[k].(float64); ok {
			return &v
		}
	}
	return nil
}
