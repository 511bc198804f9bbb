/*
Package agent implements a conversational turn processor on top of the
chatgraph engine.

Each inbound user message is one turn. A turn flows through four graph
nodes:

	classify -> (rewrite -> classify)? -> dispatch? -> respond

The classifier asks the model for a structured intent decision. Ambiguous
messages take one pass through the rewriter, which clarifies the request
and loops back for re-classification. Requests that need data go through
the dispatcher, a bounded reactive loop in which the model may call
registered tools and observe their results before answering. The responder
picks the final answer text, appends the exchange to conversation history,
and fills in turn metadata.

Construct a Session once per conversation and call ProcessMessage for
each turn:

	session, err := agent.NewSession(client, tools)
	if err != nil {
	    log.Fatal(err)
	}
	resp := session.ProcessMessage(ctx, "show me the machines")
	fmt.Println(resp.Text)

Sessions serialize their turns internally; a second ProcessMessage call
blocks until the first completes.
*/
package agent
