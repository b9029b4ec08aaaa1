package emulator

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/program"
)

var multImage = []string{
	"# mult.ls8",
	"10000010 # LDI R0,8",
	"00000000",
	"00001000",
	"10000010 # LDI R1,9",
	"00000001",
	"00001001",
	"10100010 # MUL R0,R1",
	"00000000",
	"00000001",
	"01000111 # PRN R0",
	"00000000",
	"00000001 # HLT",
}

func parse(t *testing.T, lines ...string) *program.Program {
	prog, err := program.Parse(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return prog
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(&emu.Tape, emu.Cpu.Output)
	assert.Equal(cpu.STATE_READY, emu.Cpu.State)
	assert.Zero(emu.MaxTicks)
}

func TestEmulator_Defines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defines := internal.Symbols(emu.Defines())

	assert.Equal("0xf4", defines["SP_INIT"])
	assert.Equal("256", defines["MEMORY_SIZE"])
	assert.Equal("1048576", defines["DEFAULT_MAX_TICKS"])
}

func TestEmulator_Mult(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	out := &bytes.Buffer{}
	emu := NewEmulator(TapeOpt(out))
	require.NoError(emu.Load(parse(t, multImage...)))

	// Each tick starts on the line holding the opcode.
	var lines []int
	for {
		lines = append(lines, emu.LineNo())
		done, err := emu.Tick()
		require.NoError(err)
		if done {
			break
		}
	}

	assert.Equal([]int{2, 5, 8, 11, 13}, lines)
	assert.Equal("72\n", out.String())
	assert.Equal(cpu.STATE_HALTED, emu.Cpu.State)
	assert.Equal(5, emu.Cpu.Ticks)
	assert.Equal(1, emu.Tape.Lines)

	// Further ticks stay done.
	done, err := emu.Tick()
	assert.True(done)
	assert.NoError(err)
	assert.Equal(5, emu.Cpu.Ticks)
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0))
	require.NoError(emu.Load(parse(t, multImage...)))

	state, err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(cpu.STATE_HALTED, state)
	assert.Equal([]string{"72"}, emu.Output())

	// Reset clears the captured output and restarts the program.
	require.NoError(emu.Reset())
	assert.Empty(emu.Output())
	assert.Equal(0, emu.Cpu.Pc)
	assert.Equal(byte(0x82), emu.Cpu.Memory[0])

	state, err = emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(cpu.STATE_HALTED, state)
	assert.Equal([]string{"72"}, emu.Output())
}

func TestEmulator_HaltOnly(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0))
	require.NoError(emu.Load(parse(t, "00000001")))

	state, err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(cpu.STATE_HALTED, state)
	assert.Equal(1, emu.Cpu.Ticks)
	assert.Equal(0, emu.Cpu.Pc)
	assert.Empty(emu.Output())
}

func TestEmulator_Illegal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0))
	require.NoError(emu.Load(parse(t,
		"10000010 # LDI R0,1",
		"00000000",
		"00000001",
		"# bad opcode",
		"11111111",
	)))

	state, err := emu.Run(context.Background())
	assert.Equal(cpu.STATE_FAULTED, state)
	assert.ErrorIs(err, cpu.ErrIllegalInstruction)
	assert.ErrorIs(err, cpu.ErrOpcode(0xff))

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(5, runtime.LineNo)
		assert.Equal(3, runtime.Address)
	}

	// A faulted emulator keeps returning the fault.
	done, err := emu.Tick()
	assert.False(done)
	assert.ErrorIs(err, cpu.ErrIllegalInstruction)
}

func TestEmulator_Malformed(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(TemporaryOpt(0))

	_, err := program.Parse(strings.NewReader("10000010\n0000000\n"))
	assert.ErrorIs(err, program.ErrMalformedInstruction)

	// Nothing was loaded.
	assert.Equal(cpu.Memory{}, emu.Cpu.Memory)
	assert.Equal(cpu.STATE_READY, emu.Cpu.State)
}

func TestEmulator_TickLimit(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0), MaxTicksOpt(2))
	require.NoError(emu.Load(parse(t, multImage...)))

	state, err := emu.Run(context.Background())
	assert.ErrorIs(err, ErrTickLimit)
	assert.Equal(cpu.STATE_RUNNING, state)
	assert.Equal(2, emu.Cpu.Ticks)

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(8, runtime.LineNo)
		assert.Equal(6, runtime.Address)
	}
}

func TestEmulator_Cancel(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0))
	require.NoError(emu.Load(parse(t, multImage...)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := emu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(cpu.STATE_READY, state)
	assert.Zero(emu.Cpu.Ticks)
}

func TestEmulator_OutputFull(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(1))
	require.NoError(emu.Load(parse(t,
		"01000111 # PRN R0",
		"00000000",
		"01000111 # PRN R0",
		"00000000",
		"00000001 # HLT",
	)))

	state, err := emu.Run(context.Background())
	assert.Equal(cpu.STATE_FAULTED, state)
	assert.Error(err)
	assert.Equal([]string{"0"}, emu.Output())

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(3, runtime.LineNo)
	}
}

func TestEmulator_Verbose(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	emu := NewEmulator(TemporaryOpt(0), LoggerOpt(zap.Must(zap.NewDevelopment())))
	emu.Verbose = true
	require.NoError(emu.Load(parse(t, multImage...)))
	assert.True(emu.Cpu.Verbose)

	state, err := emu.Run(context.Background())
	assert.NoError(err)
	assert.Equal(cpu.STATE_HALTED, state)
}
