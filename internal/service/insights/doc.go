// Package insights is the engine's service layer. It wires the engagement
// aggregator, segmentation classifier, churn estimator, subject personalizer,
// content predictor, and revenue calculator behind one API, and owns the
// explicit profile write-back to the subscriber store.
//
// The service depends on the Repository interface defined in this package
// and should never import from handler code. Repository implementations live
// in repository/postgres/ and repository/redisstore/.
//
// Concurrency: all operations are synchronous computations over supplied
// inputs. The engine assumes a single-writer-per-subscriber discipline for
// profile write-backs; concurrent recomputation for the same subscriber must
// be serialized by the caller. Aggregate revenue runs fan out across
// subscribers, which is safe because per-subscriber calculations share no
// mutable state and the combination step is plain summation.
package insights
