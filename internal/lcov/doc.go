// Package lcov provides a minimal model of the LCOV tracefile format:
// per-file records of line execution counts separated by end_of_record
// sentinels.
//
// The model exists for structural inspection (record counts, hit totals,
// sentinel placement) by the check command and by tests. The path
// normalizer deliberately does not go through this model: it operates on
// raw lines so that everything except SF: entries survives byte for byte.
package lcov
