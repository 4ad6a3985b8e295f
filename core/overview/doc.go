// Package overview records what the model calls behind one operation cost:
// how many calls ran, the tokens they reported and their price. An Overview
// travels in the context and is filled by [Middleware].
package overview
