// Package domain holds the complaint model and the value types shared by
// every layer: categories, urgency, status, filters, export formats, rule
// tables and operator sessions.
//
// It imports only the standard library.
package domain
