package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("пароль не должен храниться открытым текстом")
	}

	if !CheckPassword("secret123", hash) {
		t.Fatal("верный пароль должен проходить проверку")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("неверный пароль не должен проходить проверку")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Fatal("одинаковые пароли должны давать разные хеши")
	}
}
