// Package scorer estimates an applicant's probability of default. The
// heuristic model weighs the same factors a trained model would see,
// with hand-set weights, and reports a correspondingly lower
// confidence. It exists so the pipeline produces sensible decisions
// before a trained model is deployed behind the same interface.
package scorer
