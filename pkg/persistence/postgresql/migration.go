package postgresql

// migrations returns the ordered schema migrations for the expense store.
func migrations() map[int]string {
	return map[int]string{
		1: `
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'expense_concept') THEN
					CREATE TYPE expense_concept AS ENUM (
						'alimentos',
						'avion',
						'estacionamiento',
						'gasto de oficina',
						'hotel',
						'otros',
						'profesional development',
						'transporte',
						'eventos'
					);
				END IF;
			END $$;

			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				external_id TEXT UNIQUE NOT NULL,
				username TEXT,
				first_name TEXT,
				last_name TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE TABLE IF NOT EXISTS expenses (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id),
				status TEXT NOT NULL CHECK (status IN ('approved', 'not_approved', 'pending')),
				total NUMERIC(12, 2) NOT NULL,
				currency CHAR(3) NOT NULL,
				description TEXT,
				concept expense_concept,
				expense_date DATE NOT NULL,
				file_ref TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);

			CREATE INDEX IF NOT EXISTS expenses_user_id_idx ON expenses(user_id);
			CREATE INDEX IF NOT EXISTS expenses_status_idx ON expenses(status);
			CREATE INDEX IF NOT EXISTS expenses_expense_date_idx ON expenses(expense_date);
		`,
	}
}
