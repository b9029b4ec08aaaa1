package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, maxTicks int) *Server {
	s, err := NewServer(ServerConfig{
		Logger:   zap.Must(zap.NewDevelopment()),
		MaxTicks: maxTicks,
	})
	require.NoError(t, err)
	return s
}

func serve(s *Server, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func runRequest(t *testing.T, req RunRequest) string {
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return string(body)
}

const multImage = `10000010 # LDI R0,8
00000000
00001000
10000010 # LDI R1,9
00000001
00001001
10100010 # MUL R0,R1
00000000
00000001
01000111 # PRN R0
00000000
00000001 # HLT
`

func TestServer_New(t *testing.T) {
	assert := assert.New(t)

	s, err := NewServer(ServerConfig{ListenerAddr: ":0"})
	assert.NoError(err)
	assert.NotNil(s.Logger)
	assert.Equal(1<<20, s.MaxTicks)
	assert.Equal(":0", s.ListenerAddr)
}

func TestServer_RunBinary(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 0)
	rec := serve(s, http.MethodPost, "/run", runRequest(t, RunRequest{
		Program: multImage,
		Format:  FORMAT_BINARY,
	}))
	require.Equal(http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal("HALTED", resp.State)
	assert.Equal([]string{"72"}, resp.Output)
	assert.Equal(11, resp.Pc)
	assert.Equal(5, resp.Ticks)
	assert.Equal([]int{72, 9, 0, 0, 0, 0, 0, 0xf4}, resp.Registers)
	assert.Empty(resp.Error)
}

func TestServer_RunAsm(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 0)
	rec := serve(s, http.MethodPost, "/run", runRequest(t, RunRequest{
		Program: strings.Join([]string{
			"LDI R0, $(SP_INIT - 0xf0)",
			"PUSH R0",
			"POP R1",
			"PRN R1",
			"HLT",
		}, "\n"),
		Format: FORMAT_ASM,
	}))
	require.Equal(http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal("HALTED", resp.State)
	assert.Equal([]string{"4"}, resp.Output)
}

func TestServer_RunFault(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 0)
	rec := serve(s, http.MethodPost, "/run", runRequest(t, RunRequest{
		Program: "11111111\n",
		Format:  FORMAT_BINARY,
	}))
	require.Equal(http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal("FAULTED", resp.State)
	assert.NotEmpty(resp.Error)
	assert.Equal(1, resp.Ticks)
	assert.Empty(resp.Output)
}

func TestServer_RunTickLimit(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 3)

	// A request cannot raise the server budget.
	rec := serve(s, http.MethodPost, "/run", runRequest(t, RunRequest{
		Program:  multImage,
		MaxTicks: 100,
	}))
	require.Equal(http.StatusOK, rec.Code)

	var resp RunResponse
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal("RUNNING", resp.State)
	assert.Equal(3, resp.Ticks)
	assert.NotEmpty(resp.Error)

	// But it may lower it.
	rec = serve(s, http.MethodPost, "/run", runRequest(t, RunRequest{
		Program:  multImage,
		MaxTicks: 1,
	}))
	require.Equal(http.StatusOK, rec.Code)
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(1, resp.Ticks)
}

func TestServer_RunBadRequest(t *testing.T) {
	assert := assert.New(t)

	s := newTestServer(t, 0)

	table := []struct {
		name string
		body string
	}{
		{"json", "{"},
		{"malformed", runRequest(t, RunRequest{Program: "1000001\n"})},
		{"format", runRequest(t, RunRequest{Program: multImage, Format: "hex"})},
		{"asm", runRequest(t, RunRequest{Program: "JMP R0", Format: FORMAT_ASM})},
	}

	for _, entry := range table {
		rec := serve(s, http.MethodPost, "/run", entry.body)
		assert.Equal(http.StatusBadRequest, rec.Code, entry.name)

		var resp map[string]any
		if assert.NoError(json.Unmarshal(rec.Body.Bytes(), &resp), entry.name) {
			assert.NotEmpty(resp["error"], entry.name)
		}
	}
}

func TestServer_Opcodes(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 0)
	rec := serve(s, http.MethodGet, "/opcodes", "")
	require.Equal(http.StatusOK, rec.Code)

	var info []OpcodeInfo
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &info))
	require.Len(info, 13)

	// Sorted by mnemonic.
	assert.Equal(OpcodeInfo{Mnemonic: "ADD", Opcode: 0xa0, Operands: 2, Alu: true}, info[0])
	assert.Equal(OpcodeInfo{Mnemonic: "XOR", Opcode: 0xab, Operands: 2, Alu: true}, info[12])

	byName := map[string]OpcodeInfo{}
	for _, entry := range info {
		byName[entry.Mnemonic] = entry
	}
	assert.Equal(OpcodeInfo{Mnemonic: "HLT", Opcode: 0x01}, byName["HLT"])
	assert.Equal(OpcodeInfo{Mnemonic: "LDI", Opcode: 0x82, Operands: 2}, byName["LDI"])
	assert.Equal(OpcodeInfo{Mnemonic: "PRN", Opcode: 0x47, Operands: 1}, byName["PRN"])
}

func TestServer_Defines(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	s := newTestServer(t, 0)
	rec := serve(s, http.MethodGet, "/defines", "")
	require.Equal(http.StatusOK, rec.Code)

	var defines map[string]string
	require.NoError(json.Unmarshal(rec.Body.Bytes(), &defines))
	assert.Equal("0xf4", defines["SP_INIT"])
	assert.Equal("8", defines["REGISTER_COUNT"])
}
