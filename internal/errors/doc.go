// Package errors provides the coded diagnostics used across reactor.
//
// Every diagnostic the runtime can raise has a code in the registry:
//   - R001-R003: failures during evaluation, callbacks and flushing
//   - R004-R015: structural warnings about misuse (non-primitive keys,
//     prop mutation, writes to untracked values)
//   - R100-R199: configuration loading
//
// # Usage
//
//	err := errors.New(errors.CodeEvaluation).
//	    In("TodoList", "render function").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Error during evaluation
//	//
//	//   render function in <TodoList>
//	//
//	//   index out of range [3] with length 3
package errors
