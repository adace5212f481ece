// Package report assembles scored components and their simulated recovery
// timelines into a ranked report.
//
// Assemble scores every record, simulates each record's own lead time, and
// sorts entries by risk score descending. The sort is stable so records with
// equal scores keep their input order. A record that fails to score or
// simulate is reported in Failures and never aborts the rest of the batch.
package report
