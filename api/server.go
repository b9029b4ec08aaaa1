// Package api serves the LS-8 emulator over HTTP.
//
//	POST /run      run a program image or assembly source
//	GET  /opcodes  describe the instruction set
//	GET  /defines  list the predefined assembler equates
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ezrec/ls8/asm"
	"github.com/ezrec/ls8/cpu"
	"github.com/ezrec/ls8/emulator"
	"github.com/ezrec/ls8/internal"
	"github.com/ezrec/ls8/program"
)

const (
	FORMAT_BINARY = "binary" // Text image, eight binary digits per line.
	FORMAT_ASM    = "asm"    // Assembly source.

	OUTPUT_LIMIT = 4096 // Printed values captured per run.
)

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger
	MaxTicks     int // Upper bound of a request's tick budget.
}

type Server struct {
	ServerConfig

	logger *zap.Logger
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Program  string `json:"program"`
	Format   string `json:"format"`
	MaxTicks int    `json:"max_ticks"`
}

// RunResponse is the result of POST /run.
type RunResponse struct {
	State     string   `json:"state"`
	Output    []string `json:"output"`
	Pc        int      `json:"pc"`
	Registers []int    `json:"registers"`
	Ticks     int      `json:"ticks"`
	Error     string   `json:"error,omitempty"`
}

// OpcodeInfo is one entry of GET /opcodes.
type OpcodeInfo struct {
	Mnemonic string `json:"mnemonic"`
	Opcode   int    `json:"opcode"`
	Operands int    `json:"operands"`
	Alu      bool   `json:"alu"`
	SetsPc   bool   `json:"sets_pc"`
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.MaxTicks <= 0 {
		config.MaxTicks = emulator.DEFAULT_MAX_TICKS
	}

	s := &Server{
		ServerConfig: config,
		logger:       config.Logger.Named("api"),
	}

	return s, nil
}

// Handler returns the routed echo instance.
func (s *Server) Handler() *echo.Echo {
	echoer := echo.New()
	echoer.HideBanner = true

	echoer.POST("/run", s.handleRun)
	echoer.GET("/opcodes", s.handleGetOpcodes)
	echoer.GET("/defines", s.handleGetDefines)

	return echoer
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr),
		zap.Int("max_ticks", s.MaxTicks))

	return s.Handler().Start(s.ListenerAddr)
}

func (s *Server) load(emu *emulator.Emulator, req *RunRequest) (prog *program.Program, err error) {
	input := strings.NewReader(req.Program)

	switch req.Format {
	case FORMAT_BINARY, "":
		prog, err = program.Parse(input)
	case FORMAT_ASM:
		assembler := &asm.Assembler{Logger: s.logger}
		for name, value := range emu.Defines() {
			assembler.Predefine(name, value)
		}
		prog, err = assembler.Parse(input)
	default:
		err = ErrFormat(req.Format)
	}

	return
}

func (s *Server) handleRun(ectx echo.Context) error {
	req := &RunRequest{}
	err := ectx.Bind(req)
	if err != nil {
		return ectx.JSON(http.StatusBadRequest,
			map[string]any{
				"error": err.Error(),
			})
	}

	ticks := req.MaxTicks
	if ticks <= 0 || ticks > s.MaxTicks {
		ticks = s.MaxTicks
	}

	emu := emulator.NewEmulator(
		emulator.LoggerOpt(s.logger),
		emulator.TemporaryOpt(OUTPUT_LIMIT),
		emulator.MaxTicksOpt(ticks),
	)

	prog, err := s.load(emu, req)
	if err == nil {
		err = emu.Load(prog)
	}
	if err != nil {
		s.logger.Debug("load failed", zap.String("format", req.Format), zap.Error(err))
		return ectx.JSON(http.StatusBadRequest,
			map[string]any{
				"error": err.Error(),
			})
	}

	ctx := ectx.Request().Context()
	state, err := emu.Run(ctx)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return ectx.JSON(http.StatusServiceUnavailable,
			map[string]any{
				"error": err.Error(),
			})
	}

	resp := &RunResponse{
		State:     strings.ToUpper(state.String()),
		Output:    emu.Output(),
		Pc:        emu.Cpu.Pc,
		Registers: make([]int, 0, cpu.REGISTER_COUNT),
		Ticks:     emu.Cpu.Ticks,
	}
	for _, value := range emu.Cpu.Register {
		resp.Registers = append(resp.Registers, int(value))
	}
	if err != nil {
		resp.Error = err.Error()
	}

	s.logger.Info("run",
		zap.String("state", resp.State),
		zap.Int("ticks", resp.Ticks),
		zap.Int("lines", len(resp.Output)),
		zap.Error(err))

	return ectx.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetOpcodes(ectx echo.Context) error {
	var info []OpcodeInfo
	for name, op := range internal.SortedSymbols(internal.Symbols(cpu.Mnemonics())) {
		decoded := op.Decode()
		info = append(info, OpcodeInfo{
			Mnemonic: name,
			Opcode:   int(op),
			Operands: decoded.Operands,
			Alu:      decoded.IsAlu,
			SetsPc:   decoded.SetsPc,
		})
	}

	return ectx.JSON(http.StatusOK, info)
}

func (s *Server) handleGetDefines(ectx echo.Context) error {
	emu := emulator.NewEmulator(emulator.TemporaryOpt(0))
	return ectx.JSON(http.StatusOK, internal.Symbols(emu.Defines()))
}
