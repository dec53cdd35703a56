package transport_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/plotmsg/pkg/dict"
	"github.com/matzehuels/plotmsg/pkg/plot"
	"github.com/matzehuels/plotmsg/pkg/transport"
	"github.com/matzehuels/plotmsg/pkg/wire"
)

func ExamplePublisher() {
	rec := transport.NewRecorder()
	pub := transport.NewPublisher(rec, transport.Options{WarmUp: -1})
	defer pub.Close()

	fig := plot.New("t1")
	fig.AddTraceOf(plot.GraphObjects, "Scatter", dict.New("x", []int{1, 2, 3}))
	if err := fig.Send(context.Background(), pub); err != nil {
		fmt.Println(err)
		return
	}

	msgs := rec.Messages()
	env, _ := wire.Unmarshal(msgs[0])
	fmt.Println("bound:", rec.Listens())
	fmt.Println("messages:", len(msgs), "uuid:", env.Figure.UUID, "traces:", len(env.Figure.Traces))
	// Output:
	// bound: [tcp://127.0.0.1:5557]
	// messages: 1 uuid: t1 traces: 1
}
