package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/trezcool/mtihani/core/user"
	"github.com/trezcool/mtihani/storage/database/inmem"
	testutil "github.com/trezcool/mtihani/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()

	db := inmem.NewDB()
	usrRepo = inmem.NewUserRepository(db)
	return &commandLine{usrRepo: usrRepo}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	pwd     string
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", false, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "n3wS3cret"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "jaz"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-username", "jaz", "-email", "jaz@test.cd"}, pwd: "s3cretlol"},
		{name: "update to admin", args: []string{"adduser", "-username", "jaz", "-admin"}, pwd: "s3cretlmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	usr, err := usrRepo.GetUserByUsername(context.Background(), "jaz")
	if err != nil {
		t.Fatalf("GetUserByUsername() failed, %v", err)
	}
	if !usr.IsAdmin {
		t.Error("expected user to be admin")
	}
	if usr.Email != "jaz@test.cd" {
		t.Errorf("Email = %q, want %q", usr.Email, "jaz@test.cd")
	}
	if err := usr.CheckPassword("s3cretlmao"); err != nil {
		t.Error("expected latest password to be set")
	}
}
