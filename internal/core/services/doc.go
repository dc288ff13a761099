// Package services implements the driving ports.
//
// Intake classifies and stores submissions. Query filters and reviews them,
// export renders them, and the operator service guards both behind a
// session. The three analyzers (heuristic, remote and the fallback wrapper
// around both) satisfy driven.TextAnalyzer, so intake never knows which
// one it is using.
package services
