// Package registry supplies the component records a report is built from.
//
// Records come from the built-in Default() dataset, a YAML/JSON file (Load),
// or an HTTP endpoint (Fetch). All sources go through Validate: names are
// non-empty and unique, supplier_count >= 1, lead time and buffer are
// non-negative and the fractional fields lie in [0,1].
//
// Store holds the current record set for the server; Watch reloads a file on
// change and hands the new set to a callback. Edits that fail validation are
// logged and the previous set stays active.
package registry
