package workers

import (
	"chat-relay/mocks"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shirou/gopsutil/process"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStatusReporter_Report_Publishes_Gauges(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Count().Return(3).Times(1)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	reporter := NewStatusReporter(slog.Default(), registry, metrics, time.Minute)

	p, err := process.NewProcess(int32(os.Getpid()))
	req.NoError(err)
	reporter.report(p)

	req.Equal(3.0, testutil.ToFloat64(metrics.LiveConnections))
	req.Greater(testutil.ToFloat64(metrics.ProcessRSS), 0.0)
}

func TestStatusReporter_Run_Stops_With_Context(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().Count().Return(0).AnyTimes()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	reporter := NewStatusReporter(slog.Default(), registry, metrics, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req.NoError(reporter.Run(ctx))
}
