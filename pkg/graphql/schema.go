package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/mnohosten/taskpool/pkg/metrics"
	"github.com/mnohosten/taskpool/pkg/pool"
)

// Schema creates the GraphQL schema exposing pool, metrics, and resource
// statistics
func Schema(p *pool.Pool, collector *metrics.MetricsCollector, tracker *metrics.ResourceTracker) (graphql.Schema, error) {
	// Define the PoolStats type
	poolStatsType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "PoolStats",
		Description: "Statistics about the worker pool",
		Fields: graphql.Fields{
			"numWorkers": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Fixed number of workers",
			},
			"tasksSubmitted": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total tasks accepted by the pool",
			},
			"tasksActive": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Tasks currently executing",
			},
			"tasksDone": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Tasks executed to completion",
			},
			"tasksFailed": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Tasks that returned an error or panicked",
			},
			"tasksDropped": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Tasks discarded at shutdown",
			},
			"tasksQueued": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Tasks waiting in the queue",
			},
			"shuttingDown": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Whether shutdown has begun",
			},
		},
	})

	// Define the TaskTimings type
	taskTimingsType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "TaskTimings",
		Description: "Task duration percentiles over the recent window",
		Fields: graphql.Fields{
			"p50Ms": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "Median task duration in milliseconds",
			},
			"p95Ms": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "95th percentile task duration in milliseconds",
			},
			"p99Ms": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "99th percentile task duration in milliseconds",
			},
		},
	})

	// Define the MetricsSnapshot type
	metricsType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "MetricsSnapshot",
		Description: "Point-in-time view of collected metrics",
		Fields: graphql.Fields{
			"uptimeSeconds": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "Process uptime in seconds",
			},
			"stackPushes": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total stack push operations",
			},
			"stackPops": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Total stack pop operations",
			},
			"stackEmptyPops": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Pops that found the stack empty",
			},
			"taskTimings": &graphql.Field{
				Type:        graphql.NewNonNull(taskTimingsType),
				Description: "Task duration percentiles",
			},
		},
	})

	// Define the ResourceStats type
	resourceStatsType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "ResourceStats",
		Description: "Runtime resource usage",
		Fields: graphql.Fields{
			"heapInUseMb": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Float),
				Description: "Heap memory in use, in megabytes",
			},
			"numGoroutines": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Current number of goroutines",
			},
			"gcRuns": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Completed GC cycles",
			},
			"numCpu": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Int),
				Description: "Number of logical CPUs",
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"pool": &graphql.Field{
				Type:        graphql.NewNonNull(poolStatsType),
				Description: "Worker pool statistics",
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					stats := p.Stats()
					return map[string]interface{}{
						"numWorkers":     stats.NumWorkers,
						"tasksSubmitted": int(stats.TasksSubmitted),
						"tasksActive":    int(stats.TasksActive),
						"tasksDone":      int(stats.TasksDone),
						"tasksFailed":    int(stats.TasksFailed),
						"tasksDropped":   int(stats.TasksDropped),
						"tasksQueued":    int(stats.TasksQueued),
						"shuttingDown":   p.IsShuttingDown(),
					}, nil
				},
			},
			"metrics": &graphql.Field{
				Type:        graphql.NewNonNull(metricsType),
				Description: "Collected metrics snapshot",
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					snap := collector.GetSnapshot()
					return map[string]interface{}{
						"uptimeSeconds":  snap.UptimeSeconds,
						"stackPushes":    int(snap.StackPushes),
						"stackPops":      int(snap.StackPops),
						"stackEmptyPops": int(snap.StackEmptyPops),
						"taskTimings": map[string]interface{}{
							"p50Ms": snap.TaskP50Ms,
							"p95Ms": snap.TaskP95Ms,
							"p99Ms": snap.TaskP99Ms,
						},
					}, nil
				},
			},
			"resources": &graphql.Field{
				Type:        graphql.NewNonNull(resourceStatsType),
				Description: "Runtime resource usage",
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					rs := tracker.GetStats()
					return map[string]interface{}{
						"heapInUseMb":   rs.HeapInUseMB,
						"numGoroutines": rs.NumGoroutines,
						"gcRuns":        int(rs.GCRuns),
						"numCpu":        rs.NumCPU,
					}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"resetMetrics": &graphql.Field{
				Type:        graphql.NewNonNull(graphql.Boolean),
				Description: "Zero all collected metrics counters",
				Resolve: func(params graphql.ResolveParams) (interface{}, error) {
					collector.Reset()
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
