// Package harness runs end-to-end HTTP scenarios against the string service.
//
// A scenario is a YAML file that issues requests to a freshly built server
// and checks each response, then evaluates assertions over the recorded
// request trace and the final contents of the store.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	backend: memory            # or sqlite
//	setup:                     # values stored before the flow, must succeed
//	  - racecar
//	flow:
//	  - request: GET /strings
//	    query: { is_palindrome: "true" }
//	    expect:
//	      status: 200
//	      body: { count: 1 }
//	  - request: POST /strings
//	    body: { value: "hello world" }
//	    expect: { status: 201 }
//	  - request: POST /strings
//	    raw: "not json"
//	    expect: { status: 400 }
//	assertions:
//	  - type: trace_contains
//	    request: POST /strings
//	    status: 201
//	  - type: final_state
//	    value: hello world
//	    expect: { properties: { word_count: 2 } }
//
// Expected bodies are subset matches: objects may carry extra keys, arrays
// must have the same length and match element by element.
//
// # Assertion Types
//
//   - trace_contains: a request was issued (optionally with a given status)
//   - trace_order: requests were issued in the given order
//   - trace_count: a request was issued exactly N times
//   - final_state: a stored record matches expect, or is absent
//
// # Deterministic Testing
//
// Every run uses a new store, a stepping wall clock starting at
// testutil.Epoch and sequential request ids, so created_at values and
// traces are identical across runs and suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/filtering.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
