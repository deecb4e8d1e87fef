package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// UptimeSeconds tracks the miner uptime in seconds
	UptimeSeconds = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "uptime_seconds",
		Help:      "Time passed since the miner started in seconds",
	}, func() float64 { return time.Since(startTime).Seconds() })

	// Submitted custody transactions by kind (deposit, withdraw, claim)
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "transactions_total",
		Help:      "Custody transactions confirmed on chain",
	}, []string{"kind"})

	// Completed deposit/withdrawal repetitions
	MiningCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "mining_cycles_total",
		Help:      "Completed deposit and withdrawal cycles",
	})

	// Derived cooldowns by role
	CooldownSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "cooldown_seconds",
		Help:      "Cooldown derived before a deposit or withdrawal",
		Buckets:   prometheus.ExponentialBuckets(60, 2, 10),
	}, []string{"role"})

	// Seconds actually slept, zero when the deadline had already passed
	SleepSeconds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "sleep_seconds_total",
		Help:      "Time spent waiting for cooldown deadlines",
	}, []string{"role"})

	// Failed actions by run mode
	ActionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "action_failures_total",
		Help:      "Run mode actions that ended with an error",
	}, []string{"mode"})

	// Process resource usage, sampled on scrape
	ProcessCPUPercent = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "process_cpu_percent",
		Help:      "CPU usage of the miner process since start",
	}, sampleProcess(func(s ProcessStats) float64 { return s.CPUPercent }))

	ProcessMemoryBytes = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "process_memory_bytes",
		Help:      "Resident memory of the miner process",
	}, sampleProcess(func(s ProcessStats) float64 { return float64(s.MemoryRSSBytes) }))

	HostMemoryPercent = promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "host_memory_used_percent",
		Help:      "Used memory of the host in percent",
	}, sampleProcess(func(s ProcessStats) float64 { return s.HostMemoryPercent }))

	// Current run mode, one series per mode set to 1 while active
	ActiveMode = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "triggerx",
		Subsystem: "miner",
		Name:      "active_mode",
		Help:      "Run mode currently executing",
	}, []string{"mode"})
)
