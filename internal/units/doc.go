// ABOUTME: Package documentation for the unit conversion table.
// ABOUTME: Describes the supported dimensions and how unit names are resolved.

// Package units converts values between everyday measurement units.
//
// Seven dimensions are supported: length, mass, temperature, volume, speed,
// data size, and time. Each unit is defined by a linear mapping onto its
// dimension's base unit (temperatures additionally carry an offset), so any
// two units of the same dimension convert through the base.
//
// Unit names are matched case-insensitively and cover common abbreviations,
// plural forms, and spoken phrasings like "degrees celsius" or "meters per
// second". Converting between units of different dimensions fails with
// ErrIncompatible rather than guessing.
package units
