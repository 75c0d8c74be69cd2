// Package gpu reads a one-shot NVML snapshot of the primary GPU. No
// polling, no control: the snapshot informs the user and the session
// journal, nothing else.
package gpu

import (
	"codeberg.org/mutker/gamectl/internal/errors"
	"codeberg.org/mutker/gamectl/internal/logger"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const milliWattsToWatts = 1000

// Info is a point-in-time view of the primary device.
type Info struct {
	Name            string
	DriverVersion   string
	Temperature     int // degrees Celsius
	FanSpeed        int // percent
	PowerUsage      int // watts
	PowerLimit      int // watts
	CoreClock       int // MHz
	MemoryClock     int // MHz
	MemoryUsedMiB   uint64
	MemoryTotalMiB  uint64
	UtilizationGPU  int // percent
	PersistenceMode bool
}

// Snapshot initializes NVML, reads the primary device once and shuts
// NVML back down. Fields that fail to read are left at their zero value
// and logged; only init and device lookup are fatal.
func Snapshot() (Info, error) {
	errFactory := errors.New()

	if ret := nvml.Init(); !isSuccess(ret) {
		return Info{}, errFactory.Wrap(errors.ErrInitFailed, nvmlError(ret))
	}
	defer func() {
		if ret := nvml.Shutdown(); !isSuccess(ret) {
			logger.Warn().Str("nvml", nvml.ErrorString(ret)).Msg("NVML shutdown failed")
		}
	}()

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if !isSuccess(ret) {
		return Info{}, errFactory.Wrap(errors.ErrInitFailed, nvmlError(ret))
	}

	return read(device), nil
}

func read(device nvml.Device) Info {
	var info Info

	if name, ret := device.GetName(); isSuccess(ret) {
		info.Name = name
	} else {
		logger.Warn().Str("nvml", nvml.ErrorString(ret)).Msg("Failed to get GPU name")
	}
	if version, ret := nvml.SystemGetDriverVersion(); isSuccess(ret) {
		info.DriverVersion = version
	}
	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); isSuccess(ret) {
		info.Temperature = int(temp)
	}
	if speed, ret := device.GetFanSpeed(); isSuccess(ret) {
		info.FanSpeed = int(speed)
	}
	if usage, ret := device.GetPowerUsage(); isSuccess(ret) {
		info.PowerUsage = int(usage) / milliWattsToWatts
	}
	if limit, ret := device.GetPowerManagementLimit(); isSuccess(ret) {
		info.PowerLimit = int(limit) / milliWattsToWatts
	}
	if clock, ret := device.GetClockInfo(nvml.CLOCK_GRAPHICS); isSuccess(ret) {
		info.CoreClock = int(clock)
	}
	if clock, ret := device.GetClockInfo(nvml.CLOCK_MEM); isSuccess(ret) {
		info.MemoryClock = int(clock)
	}
	if mem, ret := device.GetMemoryInfo(); isSuccess(ret) {
		info.MemoryUsedMiB = mem.Used / 1024 / 1024
		info.MemoryTotalMiB = mem.Total / 1024 / 1024
	}
	if util, ret := device.GetUtilizationRates(); isSuccess(ret) {
		info.UtilizationGPU = int(util.Gpu)
	}
	if mode, ret := device.GetPersistenceMode(); isSuccess(ret) {
		info.PersistenceMode = mode == nvml.FEATURE_ENABLED
	}

	return info
}

func isSuccess(ret nvml.Return) bool {
	return ret == nvml.SUCCESS
}

func nvmlError(ret nvml.Return) error {
	return errors.New().WithData(errors.ErrOperationFailed, nvml.ErrorString(ret))
}
