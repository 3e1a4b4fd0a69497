// ABOUTME: Conversion table for everyday measurement units across seven dimensions.
// ABOUTME: Resolves spoken unit names and aliases, then converts through a base unit.

package units

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownUnit is returned when a unit name matches nothing in the table.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrIncompatible is returned when the two units measure different dimensions.
	ErrIncompatible = errors.New("incompatible units")
)

type dimension int

const (
	length dimension = iota
	mass
	temperature
	volume
	speed
	data
	duration
)

func (d dimension) String() string {
	switch d {
	case length:
		return "length"
	case mass:
		return "mass"
	case temperature:
		return "temperature"
	case volume:
		return "volume"
	case speed:
		return "speed"
	case data:
		return "data"
	case duration:
		return "time"
	default:
		return "unknown"
	}
}

// unit maps a name onto its dimension's base unit: base = value*scale + shift.
// Base units are meter, gram, kelvin, liter, m/s, byte, and second. shift is
// nonzero only for temperatures.
type unit struct {
	dim   dimension
	scale float64
	shift float64
}

var table = map[string]unit{}

func register(u unit, names ...string) {
	for _, n := range names {
		if _, ok := table[n]; ok {
			panic("units: duplicate alias " + n)
		}
		table[n] = u
	}
}

func init() {
	// Length (base meter).
	register(unit{length, 0.001, 0}, "mm", "millimeter", "millimeters", "millimetre", "millimetres")
	register(unit{length, 0.01, 0}, "cm", "centimeter", "centimeters", "centimetre", "centimetres")
	register(unit{length, 1, 0}, "m", "meter", "meters", "metre", "metres")
	register(unit{length, 1000, 0}, "km", "kilometer", "kilometers", "kilometre", "kilometres")
	register(unit{length, 0.0254, 0}, "in", "inch", "inches")
	register(unit{length, 0.3048, 0}, "ft", "foot", "feet")
	register(unit{length, 0.9144, 0}, "yd", "yard", "yards")
	register(unit{length, 1609.344, 0}, "mi", "mile", "miles")
	register(unit{length, 1852, 0}, "nmi", "nautical mile", "nautical miles")

	// Mass (base gram).
	register(unit{mass, 0.001, 0}, "mg", "milligram", "milligrams")
	register(unit{mass, 1, 0}, "g", "gram", "grams")
	register(unit{mass, 1000, 0}, "kg", "kilogram", "kilograms", "kilo", "kilos")
	register(unit{mass, 1e6, 0}, "t", "tonne", "tonnes", "metric ton", "metric tons")
	register(unit{mass, 28.349523125, 0}, "oz", "ounce", "ounces")
	register(unit{mass, 453.59237, 0}, "lb", "lbs", "pound", "pounds")
	register(unit{mass, 6350.29318, 0}, "st", "stone", "stones")

	// Temperature (base kelvin). Fahrenheit: K = (F-32)*5/9 + 273.15.
	register(unit{temperature, 1, 0}, "k", "kelvin")
	register(unit{temperature, 1, 273.15}, "c", "celsius", "centigrade", "deg c", "degrees celsius", "degree celsius")
	register(unit{temperature, 5.0 / 9.0, 273.15 - 32*5.0/9.0}, "f", "fahrenheit", "deg f", "degrees fahrenheit", "degree fahrenheit")

	// Volume (base liter, US customary for the imperial-ish names).
	register(unit{volume, 0.001, 0}, "ml", "milliliter", "milliliters", "millilitre", "millilitres")
	register(unit{volume, 1, 0}, "l", "liter", "liters", "litre", "litres")
	register(unit{volume, 3.785411784, 0}, "gal", "gallon", "gallons")
	register(unit{volume, 0.946352946, 0}, "qt", "quart", "quarts")
	register(unit{volume, 0.473176473, 0}, "pt", "pint", "pints")
	register(unit{volume, 0.2365882365, 0}, "cup", "cups")
	register(unit{volume, 0.0295735295625, 0}, "fl oz", "floz", "fluid ounce", "fluid ounces")
	register(unit{volume, 0.01478676478125, 0}, "tbsp", "tablespoon", "tablespoons")
	register(unit{volume, 0.00492892159375, 0}, "tsp", "teaspoon", "teaspoons")
	register(unit{volume, 1000, 0}, "m3", "cubic meter", "cubic meters", "cubic metre", "cubic metres")

	// Speed (base meter/second).
	register(unit{speed, 1, 0}, "m/s", "mps", "meter/second", "meters/second", "metre/second", "metres/second")
	register(unit{speed, 1000.0 / 3600.0, 0}, "km/h", "kmh", "kph", "kilometer/hour", "kilometers/hour", "kilometre/hour", "kilometres/hour")
	register(unit{speed, 0.44704, 0}, "mph", "mile/hour", "miles/hour")
	register(unit{speed, 1852.0 / 3600.0, 0}, "kn", "knot", "knots")
	register(unit{speed, 0.3048, 0}, "ft/s", "fps", "foot/second", "feet/second")

	// Data (base byte; decimal SI prefixes plus binary ones).
	register(unit{data, 0.125, 0}, "bit", "bits")
	register(unit{data, 1, 0}, "b", "byte", "bytes")
	register(unit{data, 1e3, 0}, "kb", "kilobyte", "kilobytes")
	register(unit{data, 1e6, 0}, "mb", "megabyte", "megabytes")
	register(unit{data, 1e9, 0}, "gb", "gigabyte", "gigabytes")
	register(unit{data, 1e12, 0}, "tb", "terabyte", "terabytes")
	register(unit{data, 1024, 0}, "kib", "kibibyte", "kibibytes")
	register(unit{data, 1024 * 1024, 0}, "mib", "mebibyte", "mebibytes")
	register(unit{data, 1024 * 1024 * 1024, 0}, "gib", "gibibyte", "gibibytes")
	register(unit{data, 1024 * 1024 * 1024 * 1024, 0}, "tib", "tebibyte", "tebibytes")

	// Time (base second).
	register(unit{duration, 0.001, 0}, "ms", "millisecond", "milliseconds")
	register(unit{duration, 1, 0}, "s", "sec", "secs", "second", "seconds")
	register(unit{duration, 60, 0}, "min", "mins", "minute", "minutes")
	register(unit{duration, 3600, 0}, "h", "hr", "hrs", "hour", "hours")
	register(unit{duration, 86400, 0}, "day", "days")
	register(unit{duration, 604800, 0}, "week", "weeks")
}

// normalize folds a spoken unit name onto a table key: lowercase, trimmed,
// degree signs dropped, and "X per Y" rewritten as "x/y".
func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "°", "")
	n = strings.ReplaceAll(n, " per ", "/")
	return strings.TrimSpace(n)
}

// Convert converts value from one unit to another. Both names are resolved
// case-insensitively against the alias table.
func Convert(value float64, from, to string) (float64, error) {
	fu, ok := table[normalize(from)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	tu, ok := table[normalize(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if fu.dim != tu.dim {
		return 0, fmt.Errorf("%w: %s is %s, %s is %s", ErrIncompatible, from, fu.dim, to, tu.dim)
	}
	base := value*fu.scale + fu.shift
	return (base - tu.shift) / tu.scale, nil
}
