package emulator_test

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/tinyvm/cpu"
	"github.com/ezrec/tinyvm/emulator"
	"github.com/ezrec/tinyvm/io"
)

var errWriteFailed = errors.New("write failed")

// noteFailWriter accepts state lines and fails narration lines.
type noteFailWriter struct{}

func (noteFailWriter) Write(p []byte) (int, error) {
	if bytes.HasPrefix(p, []byte("/*")) {
		return 0, errWriteFailed
	}
	return len(p), nil
}

var _ = Describe("Emulator", func() {
	var (
		emu    *emulator.Emulator
		output *bytes.Buffer
		trace  *bytes.Buffer
	)

	load := func(program ...string) {
		prog, err := cpu.Load(strings.NewReader(strings.Join(program, "\n")))
		Expect(err).NotTo(HaveOccurred())
		emu.Program = prog
		Expect(emu.Reset()).To(Succeed())
	}

	BeforeEach(func() {
		emu = emulator.NewEmulator()
		output = &bytes.Buffer{}
		trace = &bytes.Buffer{}
		emu.Tape.Output = output
		emu.Tape.Input = strings.NewReader("")
		emu.Limit = 1000
	})

	It("should start at the program base", func() {
		load("7 0")
		Expect(emu.Ip()).To(Equal(cpu.PROGRAM_BASE))
		Expect(emu.Code()).To(Equal(cpu.MakeCode(cpu.OP_END, 0)))
		Expect(emu.LineNo()).To(Equal(1))
		Expect(emu.Ticks()).To(Equal(0))
	})

	It("should export the machine defines", func() {
		defines := map[string]string{}
		for key, value := range emu.Defines() {
			defines[key] = value
		}
		Expect(defines).To(HaveKeyWithValue("PROGRAM_BASE", "10"))
		Expect(defines).To(HaveKeyWithValue("PROGRAM_LIMIT", "1000"))
		Expect(defines).To(HaveKeyWithValue("DATA_SIZE", "10"))
	})

	Context("Programs", func() {
		It("should echo its input", func() {
			emu.Tape.Input = strings.NewReader("42\n")
			load("5 0", "6 0", "7 0")

			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("42\n"))
			Expect(emu.Ticks()).To(Equal(3))
		})

		It("should store, load and add", func() {
			load("3 0", "1 0", "2 0", "6 0", "7 0")
			emu.Cpu.Acc = 3

			done, err := emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(emu.Cpu.Data[0]).To(Equal(int32(3)))

			_, err = emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(emu.Cpu.Acc).To(Equal(int32(3)))

			_, err = emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(emu.Cpu.Acc).To(Equal(int32(6)))

			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("6\n"))
		})

		It("should round trip a stored value", func() {
			emu.Tape.Input = strings.NewReader("-17 5")
			load("5 0", "3 7", "5 0", "1 7", "6 0", "7 0")

			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("-17\n"))
		})

		It("should count down with SKIPZ and JMP", func() {
			// mem[1] = 1; acc = input; loop: out; acc -= mem[1]; skipz; jmp loop; end
			emu.Tape.Input = strings.NewReader("1 3")
			load(
				"5 0",  // 10: IN
				"3 1",  // 11: STORE 1
				"5 0",  // 12: IN
				"6 0",  // 13: OUT
				"4 1",  // 14: SUB 1
				"9 0",  // 15: SKIPZ
				"8 13", // 16: JMP 13
				"7 0",  // 17: END
			)

			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("3\n2\n1\n"))
		})

		It("should never execute the instruction after a taken SKIPZ", func() {
			load("9 0", "99 0", "7 0")
			Expect(emu.Run()).To(Succeed())
		})

		It("should fall through SKIPZ when the accumulator is not zero", func() {
			emu.Tape.Input = strings.NewReader("2")
			load("5 0", "9 0", "6 0", "7 0")
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("2\n"))
		})

		It("should wrap the accumulator", func() {
			emu.Tape.Input = strings.NewReader("2147483647 1")
			load("5 0", "3 0", "5 0", "2 0", "6 0", "7 0")
			Expect(emu.Run()).To(Succeed())
			Expect(output.String()).To(Equal("-2147483648\n"))
		})
	})

	Context("Errors", func() {
		It("should stop at an unknown opcode", func() {
			load("6 0", "99 0", "6 0", "7 0")

			err := emu.Run()
			Expect(err).To(MatchError(cpu.ErrUnknownOpcode))
			Expect(err.Error()).To(ContainSubstring("99"))
			Expect(output.String()).To(Equal("0\n"))

			var rt *emulator.ErrRuntime
			Expect(errors.As(err, &rt)).To(BeTrue())
			Expect(rt.Ip).To(Equal(cpu.PROGRAM_BASE + 1))
			Expect(rt.LineNo).To(Equal(2))
		})

		It("should fail on a jump outside the program", func() {
			load("8 500", "7 0")

			done, err := emu.Tick()
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(BeFalse())
			Expect(emu.Ip()).To(Equal(500))

			_, err = emu.Tick()
			Expect(err).To(MatchError(cpu.ErrInvalidAddress))

			var rt *emulator.ErrRuntime
			Expect(errors.As(err, &rt)).To(BeTrue())
			Expect(rt.Ip).To(Equal(500))
			Expect(rt.LineNo).To(Equal(0))
		})

		It("should print addresses and opcodes without digit grouping", func() {
			load("8 1500")

			err := emu.Run()
			Expect(err).To(MatchError(cpu.ErrInvalidAddress))
			Expect(err.Error()).To(HavePrefix("address 1500: "))
			Expect(err.Error()).To(ContainSubstring("instruction address 1500 "))

			load("1000 0")
			err = emu.Run()
			Expect(err).To(MatchError(cpu.ErrUnknownOpcode))
			Expect(err.Error()).To(ContainSubstring("unknown opcode 1000 (operand 0)"))
		})

		It("should fail on a data address out of range", func() {
			load("1 10", "7 0")
			Expect(emu.Run()).To(MatchError(cpu.ErrAddressOutOfRange))
		})

		It("should fail when running off the end", func() {
			load("6 0")
			Expect(emu.Run()).To(MatchError(cpu.ErrInvalidAddress))
		})

		It("should fail when input runs out", func() {
			load("5 0", "7 0")
			err := emu.Run()
			Expect(err).To(MatchError(cpu.ErrChannelFailed))
			Expect(err).To(MatchError(io.ErrChannelEmpty))
		})

		It("should fail on input that is not an integer", func() {
			emu.Tape.Input = strings.NewReader("seven")
			load("5 0", "7 0")
			Expect(emu.Run()).To(MatchError(io.ErrChannelInput))
		})

		It("should stop an endless loop at the limit", func() {
			emu.Limit = 25
			load("8 10")
			Expect(emu.Run()).To(MatchError(emulator.ErrTickLimit))
			Expect(emu.Ticks()).To(Equal(25))
		})

		It("should log the machine state when a verbose run stops", func() {
			logged := &bytes.Buffer{}
			log.SetOutput(logged)
			DeferCleanup(func() { log.SetOutput(os.Stderr) })

			emu.Verbose = true
			load("1 12")
			Expect(emu.Run()).To(MatchError(cpu.ErrAddressOutOfRange))
			Expect(logged.String()).To(ContainSubstring("stopped after 0 instructions"))
			Expect(logged.String()).To(ContainSubstring("   pc: 11\n"))
			Expect(logged.String()).To(ContainSubstring("  dm9: 0\n"))
		})

		It("should require a program", func() {
			emu.Program = nil
			Expect(emu.Reset()).To(MatchError(cpu.ErrProgramMissing))
		})
	})

	Context("Trace", func() {
		BeforeEach(func() {
			emu.Trace = &io.Trace{Output: trace}
		})

		It("should print the state before every fetch", func() {
			emu.Tape.Input = strings.NewReader("4")
			load("5 0", "3 2", "7 0")

			Expect(emu.Run()).To(Succeed())

			lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
			Expect(lines).To(Equal([]string{
				"PC = 10 | A = 0, DM = [0,0,0,0,0,0,0,0,0,0]",
				"",
				"/*input value*/",
				"PC = 11 | A = 4, DM = [0,0,0,0,0,0,0,0,0,0]",
				"",
				"/*storing accumulator in memory location 2*/",
				"PC = 12 | A = 4, DM = [0,0,4,0,0,0,0,0,0,0]",
				"",
				"/*program end*/",
			}))
		})

		It("should narrate large accumulator values as plain digits", func() {
			emu.Tape.Input = strings.NewReader("1234")
			load("5 0", "3 0", "2 0", "7 0")

			Expect(emu.Run()).To(Succeed())
			Expect(trace.String()).To(ContainSubstring(
				"PC = 12 | A = 1234, DM = [1234,0,0,0,0,0,0,0,0,0]\n\n" +
					"/*loading memory location 0 to be added to accumulator value 1234*/\n"))
		})

		It("should not execute an instruction whose narration fails", func() {
			emu.Trace = &io.Trace{Output: noteFailWriter{}}
			load("5 0", "7 0")

			Expect(emu.Run()).To(MatchError(errWriteFailed))
			Expect(emu.Ticks()).To(Equal(0))
		})

		It("should print the state before a failing fetch", func() {
			load("8 3")

			Expect(emu.Run()).To(MatchError(cpu.ErrInvalidAddress))
			Expect(trace.String()).To(HaveSuffix("PC = 3 | A = 0, DM = [0,0,0,0,0,0,0,0,0,0]\n\n"))
		})
	})
})
