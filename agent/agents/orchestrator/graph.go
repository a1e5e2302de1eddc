package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Travel-Concierge/agent/nodes/orchestrator"
)

const (
	nodeValidateRequest    = "validate_request"
	nodeResetMemory        = "reset_memory"
	nodeAnnotateReferences = "annotate_references"
	nodeAppendUserTurn     = "append_user_turn"
	nodeInvokeSupervisor   = "invoke_supervisor"
	nodeAppendReply        = "append_reply"
	nodeFinalizeReply      = "finalize_reply"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodeValidateRequest,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(ctx, in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	if err := graph.AddLambdaNode(nodeResetMemory,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.ResetMemory(in, o.metrics)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeResetMemory, err)
	}

	if err := graph.AddLambdaNode(nodeAnnotateReferences,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AnnotateReferences(in, o.resolvers, o.metrics)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeAnnotateReferences, err)
	}

	if err := graph.AddLambdaNode(nodeAppendUserTurn,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AppendUserTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeAppendUserTurn, err)
	}

	if err := graph.AddLambdaNode(nodeInvokeSupervisor,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.InvokeSupervisor(ctx, in, o.models.Supervisor(), o.metrics)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeInvokeSupervisor, err)
	}

	if err := graph.AddLambdaNode(nodeAppendReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.AppendReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeAppendReply, err)
	}

	if err := graph.AddLambdaNode(nodeFinalizeReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}

	checkReset := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if nodex.IsExitCommand(in.Text) {
				return nodeResetMemory, nil
			}
			return nodeAnnotateReferences, nil
		},
		map[string]bool{nodeResetMemory: true, nodeAnnotateReferences: true},
	)

	if err := graph.AddEdge(compose.START, nodeValidateRequest); err != nil {
		return nil, fmt.Errorf("add edge %s->%s: %w", compose.START, nodeValidateRequest, err)
	}
	if err := graph.AddBranch(nodeValidateRequest, checkReset); err != nil {
		return nil, fmt.Errorf("add branch check_reset: %w", err)
	}

	edges := [][2]string{
		{nodeResetMemory, compose.END},
		{nodeAnnotateReferences, nodeAppendUserTurn},
		{nodeAppendUserTurn, nodeInvokeSupervisor},
		{nodeInvokeSupervisor, nodeAppendReply},
		{nodeAppendReply, nodeFinalizeReply},
		{nodeFinalizeReply, compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
