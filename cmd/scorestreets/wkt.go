package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseWKTLines extracts coordinate paths from a LINESTRING or
// MULTILINESTRING WKT string. Coordinates keep their source order
// (x y, which is easting northing for the noise dataset).
func parseWKTLines(wkt string) ([][][2]float64, error) {
	wkt = strings.TrimSpace(wkt)
	upper := strings.ToUpper(wkt)

	switch {
	case strings.HasPrefix(upper, "MULTILINESTRING"):
		body, err := wktBody(wkt)
		if err != nil {
			return nil, err
		}
		var paths [][][2]float64
		for _, group := range splitWKTGroups(body) {
			path, err := parseWKTCoords(group)
			if err != nil {
				return nil, err
			}
			paths = append(paths, path)
		}
		return paths, nil

	case strings.HasPrefix(upper, "LINESTRING"):
		body, err := wktBody(wkt)
		if err != nil {
			return nil, err
		}
		path, err := parseWKTCoords(body)
		if err != nil {
			return nil, err
		}
		return [][][2]float64{path}, nil

	default:
		return nil, fmt.Errorf("unsupported WKT geometry: %q", firstWord(wkt))
	}
}

// wktBody returns the text between the outermost parentheses
func wktBody(wkt string) (string, error) {
	open := strings.Index(wkt, "(")
	close := strings.LastIndex(wkt, ")")
	if open < 0 || close <= open {
		return "", fmt.Errorf("malformed WKT: %q", wkt)
	}
	return wkt[open+1 : close], nil
}

// splitWKTGroups splits "(...), (...)" into its parenthesized groups
func splitWKTGroups(body string) []string {
	var groups []string
	depth := 0
	start := -1
	for i, r := range body {
		switch r {
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 && start >= 0 {
				groups = append(groups, body[start:i])
			}
		}
	}
	return groups
}

func parseWKTCoords(body string) ([][2]float64, error) {
	pairs := strings.Split(body, ",")
	coords := make([][2]float64, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed WKT coordinate: %q", pair)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		coords = append(coords, [2]float64{x, y})
	}
	return coords, nil
}

func firstWord(s string) string {
	if i := strings.IndexAny(s, " ("); i > 0 {
		return s[:i]
	}
	return s
}
